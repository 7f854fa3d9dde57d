package errors

import (
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal        ErrorCode = "COMMON_001"
	ErrCodeBadRequest      ErrorCode = "COMMON_002"
	ErrCodeNotFound        ErrorCode = "COMMON_005"
	ErrCodeConflict        ErrorCode = "COMMON_006"
	ErrCodeTimeout         ErrorCode = "COMMON_009"
	ErrCodeValidation      ErrorCode = "COMMON_010"
	ErrCodeSerialization   ErrorCode = "COMMON_011"
	ErrCodeDatabaseError   ErrorCode = "COMMON_012"
	ErrCodeCacheError      ErrorCode = "COMMON_013"
	ErrCodeNotImplemented  ErrorCode = "COMMON_016"
	ErrCodeIOError         ErrorCode = "COMMON_017"
	ErrCodeCanceled        ErrorCode = "COMMON_018"
)

// Aliases
const (
	CodeInternal       = ErrCodeInternal
	CodeInvalidParam   = ErrCodeBadRequest
	CodeNotFound       = ErrCodeNotFound
	CodeConflict       = ErrCodeConflict
	CodeNotImplemented = ErrCodeNotImplemented
	CodeOK             = ErrorCode("OK")
	CodeUnknown        = ErrorCode("UNKNOWN")

	CodeSpanInvalid          = ErrCodeSpanInvalid
	CodeMissingTier          = ErrCodeMissingTier
	CodeClassifierMismatch   = ErrCodeClassifierBatchMismatch
	CodeGazetteerUnavailable = ErrCodeGazetteerUnavailable
)

// Annotation Module Error Codes
const (
	ErrCodeSpanInvalid          ErrorCode = "ANN_001"
	ErrCodeMissingTier          ErrorCode = "ANN_002"
	ErrCodeDocumentEmpty        ErrorCode = "ANN_003"
	ErrCodeTierUnknown          ErrorCode = "ANN_004"
	ErrCodePipelineFailed       ErrorCode = "ANN_005"
	ErrCodeAnnotatorConfigError ErrorCode = "ANN_006"
)

// Gazetteer Module Error Codes
const (
	ErrCodeGazetteerUnavailable  ErrorCode = "GAZ_001"
	ErrCodeGazetteerQueryFailed  ErrorCode = "GAZ_002"
	ErrCodeGazetteerImportFailed ErrorCode = "GAZ_003"
	ErrCodeGazetteerRecordBad    ErrorCode = "GAZ_004"
	ErrCodeGazetteerDriver       ErrorCode = "GAZ_005"
	ErrCodeMigrationFailed       ErrorCode = "GAZ_006"
)

// Classifier Module Error Codes
const (
	ErrCodeClassifierNotLoaded     ErrorCode = "CLS_001"
	ErrCodeClassifierBatchMismatch ErrorCode = "CLS_002"
	ErrCodeClassifierInputInvalid  ErrorCode = "CLS_003"
	ErrCodeClassifierModelInvalid  ErrorCode = "CLS_004"
)

// ErrorCodeExitStatus maps error codes to CLI process exit statuses.
var ErrorCodeExitStatus = map[ErrorCode]int{
	ErrCodeBadRequest:    2,
	ErrCodeValidation:    2,
	ErrCodeNotFound:      3,
	ErrCodeIOError:       3,
	ErrCodeDocumentEmpty: 2,

	ErrCodeGazetteerUnavailable: 4,
	ErrCodeGazetteerQueryFailed: 4,
	ErrCodeGazetteerDriver:      4,
	ErrCodeDatabaseError:        4,
	ErrCodeMigrationFailed:      4,

	ErrCodeClassifierNotLoaded:     5,
	ErrCodeClassifierBatchMismatch: 5,
	ErrCodeClassifierModelInvalid:  5,

	ErrCodeCanceled: 130,
}

// ErrorCodeMessage maps ErrorCode to default error messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:       "internal error",
	ErrCodeBadRequest:     "bad request",
	ErrCodeNotFound:       "resource not found",
	ErrCodeConflict:       "resource conflict",
	ErrCodeTimeout:        "operation timeout",
	ErrCodeValidation:     "validation failed",
	ErrCodeSerialization:  "serialization failed",
	ErrCodeDatabaseError:  "database error",
	ErrCodeCacheError:     "cache error",
	ErrCodeNotImplemented: "not implemented",
	ErrCodeIOError:        "i/o error",
	ErrCodeCanceled:       "operation canceled",

	ErrCodeSpanInvalid:          "invalid span bounds",
	ErrCodeMissingTier:          "required tier missing from document",
	ErrCodeDocumentEmpty:        "document has no text",
	ErrCodeTierUnknown:          "unknown tier",
	ErrCodePipelineFailed:       "linguistic pipeline failed",
	ErrCodeAnnotatorConfigError: "invalid annotator configuration",

	ErrCodeGazetteerUnavailable:  "gazetteer unavailable",
	ErrCodeGazetteerQueryFailed:  "gazetteer query failed",
	ErrCodeGazetteerImportFailed: "gazetteer import failed",
	ErrCodeGazetteerRecordBad:    "malformed gazetteer record",
	ErrCodeGazetteerDriver:       "unsupported gazetteer driver",
	ErrCodeMigrationFailed:       "schema migration failed",

	ErrCodeClassifierNotLoaded:     "classifier model not loaded",
	ErrCodeClassifierBatchMismatch: "classifier returned a different number of results than submitted",
	ErrCodeClassifierInputInvalid:  "invalid classifier input",
	ErrCodeClassifierModelInvalid:  "invalid classifier model",
}

// ExitStatusForCode returns the process exit status for an ErrorCode.
func ExitStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeExitStatus[code]; ok {
		return status
	}
	return 1
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsInputError returns true if the ErrorCode describes bad caller input.
func IsInputError(code ErrorCode) bool {
	return ExitStatusForCode(code) == 2
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 1 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
