package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrImportNotFound indicates that no import exists for the given identifier.
var ErrImportNotFound = errors.New("import not found")

// ErrStageNotReady indicates that the fact stage was asked to run before the
// dimension stage recorded its completion.
var ErrStageNotReady = errors.New("dimension stage not completed")
