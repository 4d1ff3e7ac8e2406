package repositories

import "context"

// SpreadsheetSource streams header-mapped rows out of a stored spreadsheet
// blob. Rows are delivered in file order, in chunks of at most chunkSize.
type SpreadsheetSource interface {
	// ReadChunks invokes fn for each chunk of rows. Each row maps
	// column header → raw cell value. A non-nil error from fn aborts the
	// stream. Returns the total number of data rows read.
	ReadChunks(ctx context.Context, chunkSize int, fn func(rows []map[string]string) error) (int64, error)

	// Close releases the underlying file handle.
	Close() error
}

// SpreadsheetOpener opens a stored blob as a row stream.
type SpreadsheetOpener func(path string) (SpreadsheetSource, error)
