package models

import "time"

// ImportStatus indicates the state of an import. Transitions are forward
// only: queued → processing → completed or failed.
type ImportStatus string

const (
	ImportQueued     ImportStatus = "QUEUED"
	ImportProcessing ImportStatus = "PROCESSING"
	ImportCompleted  ImportStatus = "COMPLETED"
	ImportFailed     ImportStatus = "FAILED"
)

// ImportJob is the externally observable progress record of one logical
// import, spanning both the dimension stage and the fact stage.
type ImportJob struct {
	ImportID      string       `json:"importID"` // UUID
	Filename      string       `json:"filename"`
	FilePath      string       `json:"filePath"` // Blob location of the uploaded spreadsheet
	FileSize      int64        `json:"fileSize"`
	ChunkSize     int          `json:"chunkSize"` // Streaming read chunk recommendation at enqueue time
	Status        ImportStatus `json:"status"`
	TotalRows     int64        `json:"totalRows"`
	ProcessedRows int64        `json:"processedRows"`
	FailedRows    int64        `json:"failedRows"`
	ErrorMessage  string       `json:"errorMessage,omitempty"`
	// DimensionsDoneAt is the durable completion fact of the dimension
	// stage; the fact stage must not start while it is nil.
	DimensionsDoneAt *time.Time `json:"dimensionsDoneAt,omitempty"`
	StartedAt        *time.Time `json:"startedAt,omitempty"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// Percentage returns import completion in [0,100]. Unknown totals report 0.
func (j *ImportJob) Percentage() float64 {
	if j.TotalRows <= 0 {
		return 0
	}
	pct := float64(j.ProcessedRows+j.FailedRows) / float64(j.TotalRows) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

// ImportStage names one of the two sequential stages of an import.
type ImportStage string

const (
	StageDimensions ImportStage = "DIMENSIONS"
	StageFacts      ImportStage = "FACTS"
)

// TaskStatus is the lifecycle of one durable queue row.
type TaskStatus string

const (
	TaskPending TaskStatus = "PENDING"
	TaskRunning TaskStatus = "RUNNING"
	TaskDone    TaskStatus = "DONE"
	TaskFailed  TaskStatus = "FAILED"
)

// ImportTask is one unit of work on the durable queue: a single stage of a
// single import. Delivery is at-least-once; stage runners are idempotent.
type ImportTask struct {
	TaskID     string      `json:"taskID"`
	ImportID   string      `json:"importID"`
	Stage      ImportStage `json:"stage"`
	Status     TaskStatus  `json:"status"`
	Attempts   int         `json:"attempts"`
	CreatedAt  time.Time   `json:"createdAt"`
	StartedAt  *time.Time  `json:"startedAt,omitempty"`
	FinishedAt *time.Time  `json:"finishedAt,omitempty"`
}
