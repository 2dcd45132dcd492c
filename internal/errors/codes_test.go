package errors

import (
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	err := NotFound("New character '%s' not found in the character list", "龍")
	assert.Equal(t, ErrCodeNotFound, err.GetCode())
	assert.Equal(t, "New character '龍' not found in the character list", err.Message)
	assert.Equal(t, "[NOT_FOUND] New character '龍' not found in the character list", err.Error())
}

func TestErrorWithCause(t *testing.T) {
	cause := pkgerrors.New("disk full")
	err := &Error{Code: ErrCodeInvalidArgument, Message: "cannot write", Cause: cause}
	assert.Equal(t, "[INVALID_ARGUMENT] cannot write: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestWithContext(t *testing.T) {
	err := InvalidPosition("index %d", 20).WithContext("index", 20).WithContext("char", "你")
	require.Len(t, err.Context, 2)
	assert.Equal(t, 20, err.Context["index"])
}

func TestIsCodeThroughWrapping(t *testing.T) {
	base := Duplicate("Character '%s' already exists at index %d", "你", 3)
	wrapped := pkgerrors.Wrap(base, "append failed")

	assert.True(t, IsCode(wrapped, ErrCodeDuplicate))
	assert.False(t, IsCode(wrapped, ErrCodeLength))
	assert.False(t, IsCode(pkgerrors.New("plain"), ErrCodeDuplicate))
	assert.False(t, IsCode(nil, ErrCodeDuplicate))
}

func TestGetCodeFromError(t *testing.T) {
	assert.Equal(t, ErrCodeLength, GetCodeFromError(Length("too long"), ErrCodeInvalidArgument))
	assert.Equal(t, ErrCodeInvalidArgument, GetCodeFromError(pkgerrors.New("x"), ErrCodeInvalidArgument))
}
