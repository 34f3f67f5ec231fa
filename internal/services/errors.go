package services

import "errors"

// Data service errors
var (
	// Dataset errors
	ErrDatasetNotLoaded = errors.New("dataset not loaded")
	ErrNoRecordsFound   = errors.New("no records found")

	// Filter errors
	ErrInvalidFilter = errors.New("invalid filter parameters")

	// Export errors
	ErrExportFailed = errors.New("export failed")

	// General errors
	ErrInvalidInput       = errors.New("invalid input")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
