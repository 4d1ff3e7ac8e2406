package models

// OpsStatus is the operational snapshot served to monitoring: queue depth,
// failure count, the current chunk-size recommendation and which dimension
// levels currently have a shared cache entry.
type OpsStatus struct {
	PendingTasks       int64                   `json:"pendingTasks"`
	RunningTasks       int64                   `json:"runningTasks"`
	FailedImports      int64                   `json:"failedImports"`
	ChunkSizeSuggested int                     `json:"chunkSizeSuggested"`
	CacheLevels        map[DimensionLevel]bool `json:"cacheLevels"`
}
