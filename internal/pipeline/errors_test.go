package pipeline

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessingError(t *testing.T) {
	cause := errors.New("decode failed")
	err := NewEntryFailureError("p_L", "cannot load image", cause)

	assert.Equal(t, "ENTRY_FAILURE: p_L: cannot load image (caused by: decode failed)", err.Error())
	assert.Equal(t, "decode failed", err.Detail())
	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("outer: %w", err)
	assert.Equal(t, CodeEntryFailure, CodeOf(wrapped))
	assert.False(t, IsFatal(wrapped))
	assert.Equal(t, "decode failed", detail(wrapped))
}

func TestProcessingError_Variants(t *testing.T) {
	fatal := NewFatalPreconditionError("missing credentials", nil)
	assert.Equal(t, "FATAL_PRECONDITION: missing credentials", fatal.Error())
	assert.Equal(t, "missing credentials", fatal.Detail())
	assert.True(t, IsFatal(fatal))

	svc := NewServiceFailureError("p_R", errors.New("401"))
	assert.Equal(t, CodeServiceFailure, svc.Code)
	assert.Equal(t, "p_R", svc.Page)

	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
	assert.Equal(t, "plain", detail(errors.New("plain")))
}

func TestDescribe(t *testing.T) {
	ok := PageResult{Name: "p_L", Status: StatusOK}
	assert.Equal(t, "p_L: ok", Describe(ok))

	failed := PageResult{
		Name:   "p_R",
		Status: StatusFailed,
		Err:    NewServiceFailureError("p_R", errors.New("quota exceeded")),
	}
	assert.Equal(t, "p_R: failed (quota exceeded)", Describe(failed))

	plain := PageResult{Name: "p_R", Status: StatusFailed, Err: errors.New("disk full")}
	assert.Equal(t, "p_R: failed (disk full)", Describe(plain))
}
