package errors

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode_String(t *testing.T) {
	assert.Equal(t, "ANN_001", ErrCodeSpanInvalid.String())
}

func TestExitStatusForCode(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrCodeInternal, 1},
		{ErrCodeBadRequest, 2},
		{ErrCodeIOError, 3},
		{ErrCodeGazetteerQueryFailed, 4},
		{ErrCodeClassifierBatchMismatch, 5},
		{ErrCodeCanceled, 130},
		{ErrorCode("UNKNOWN"), 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ExitStatusForCode(tt.code), tt.code.String())
	}
}

func TestDefaultMessageForCode(t *testing.T) {
	assert.Equal(t, "internal error", DefaultMessageForCode(ErrCodeInternal))
	assert.Equal(t, "unknown error", DefaultMessageForCode(ErrorCode("UNKNOWN")))
}

func TestIsInputError(t *testing.T) {
	assert.True(t, IsInputError(ErrCodeValidation))
	assert.False(t, IsInputError(ErrCodeDatabaseError))
}

func TestModuleForCode(t *testing.T) {
	assert.Equal(t, "COMMON", ModuleForCode(ErrCodeInternal))
	assert.Equal(t, "ANN", ModuleForCode(ErrCodeMissingTier))
	assert.Equal(t, "GAZ", ModuleForCode(ErrCodeGazetteerQueryFailed))
	assert.Equal(t, "CLS", ModuleForCode(ErrCodeClassifierBatchMismatch))
	assert.Equal(t, "UNKNOWN", ModuleForCode(ErrorCode("")))
}

func TestEveryCodeHasMessage(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z]+_\d{3}$`)
	for code, msg := range ErrorCodeMessage {
		assert.Regexp(t, pattern, code.String())
		assert.NotEmpty(t, msg, code.String())
	}
	for code := range ErrorCodeExitStatus {
		_, ok := ErrorCodeMessage[code]
		assert.True(t, ok, "exit status mapped for code without message: %s", code)
	}
}

//Personal.AI order the ending
