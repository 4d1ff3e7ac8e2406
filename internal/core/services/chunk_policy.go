package services

import "runtime"

const (
	baselineChunkSize = 250
	minChunkSize      = 100
	maxChunkSize      = 1000
)

// HeadroomFunc estimates available memory headroom in bytes. Supplied by
// the hosting runtime's resource accounting; tests inject fixed values.
type HeadroomFunc func() int64

// ChunkSizePolicy computes how many rows the streaming reader buffers per
// dispatch unit, trading throughput against peak memory.
type ChunkSizePolicy struct {
	headroom HeadroomFunc
}

// NewChunkSizePolicy creates a policy with the given headroom supplier.
// A nil supplier disables the headroom adjustment.
func NewChunkSizePolicy(headroom HeadroomFunc) *ChunkSizePolicy {
	return &ChunkSizePolicy{headroom: headroom}
}

// DefaultHeadroom derives headroom from a configured process memory ceiling
// minus the heap currently in use.
func DefaultHeadroom(ceilingMB int64) HeadroomFunc {
	return func() int64 {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		headroom := ceilingMB*1024*1024 - int64(m.HeapInuse)
		if headroom < 0 {
			return 0
		}
		return headroom
	}
}

// ChunkSize returns the row-batch size for a file of the given size.
// Baseline 250 rows, adjusted first by file size, then by memory headroom.
// Pass a non-positive size when the file size is unknown.
func (p *ChunkSizePolicy) ChunkSize(fileSizeBytes int64) int {
	size := float64(baselineChunkSize)

	const mb = 1024 * 1024
	switch {
	case fileSizeBytes > 50*mb:
		size = 150
	case fileSizeBytes >= 20*mb:
		size = 200
	case fileSizeBytes > 0 && fileSizeBytes < 5*mb:
		size = 500
	}

	if p.headroom != nil {
		switch head := p.headroom(); {
		case head < 128*mb:
			size *= 0.6
			if size < minChunkSize {
				size = minChunkSize
			}
		case head > 512*mb:
			size *= 1.5
			if size > maxChunkSize {
				size = maxChunkSize
			}
		}
	}

	return int(size)
}
