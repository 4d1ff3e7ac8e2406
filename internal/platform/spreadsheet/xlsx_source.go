package spreadsheet

import (
	"context"
	"fmt"

	portsrepo "github.com/opengov-tools/budget_import_app/internal/core/ports/repositories"
	"github.com/xuri/excelize/v2"
)

// XLSXSource streams rows out of an xlsx blob using excelize's row
// iterator, so a large file never has to fit in memory at once. The first
// row of the first sheet is the header; every following row is delivered as
// a header→cell map.
type XLSXSource struct {
	file  *excelize.File
	sheet string
}

// Open opens a stored xlsx blob as a row stream.
func Open(path string) (portsrepo.SpreadsheetSource, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet %s: %w", path, err)
	}

	sheet := f.GetSheetName(0)
	if sheet == "" {
		f.Close()
		return nil, fmt.Errorf("spreadsheet %s has no sheets", path)
	}
	return &XLSXSource{file: f, sheet: sheet}, nil
}

// Ensure implementation matches interface
var _ portsrepo.SpreadsheetSource = (*XLSXSource)(nil)

// ReadChunks streams data rows to fn in chunks of at most chunkSize,
// returning the total number of data rows read.
func (s *XLSXSource) ReadChunks(ctx context.Context, chunkSize int, fn func(rows []map[string]string) error) (int64, error) {
	if chunkSize <= 0 {
		chunkSize = 1
	}

	rows, err := s.file.Rows(s.sheet)
	if err != nil {
		return 0, fmt.Errorf("failed to iterate sheet %s: %w", s.sheet, err)
	}
	defer rows.Close()

	var (
		headers []string
		chunk   = make([]map[string]string, 0, chunkSize)
		total   int64
	)

	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			return total, fmt.Errorf("failed to read row: %w", err)
		}

		if headers == nil {
			headers = cols
			continue
		}

		mapped := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(cols) {
				mapped[header] = cols[i]
			} else {
				mapped[header] = ""
			}
		}
		chunk = append(chunk, mapped)
		total++

		if len(chunk) >= chunkSize {
			if err := ctx.Err(); err != nil {
				return total, err
			}
			if err := fn(chunk); err != nil {
				return total, err
			}
			chunk = make([]map[string]string, 0, chunkSize)
		}
	}

	if len(chunk) > 0 {
		if err := fn(chunk); err != nil {
			return total, err
		}
	}
	return total, nil
}

// Close releases the underlying file handle.
func (s *XLSXSource) Close() error {
	return s.file.Close()
}
