package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	cases := map[Kind]int{
		KindAccountNotFound: http.StatusBadRequest,
		KindNoPendingOTP:    http.StatusBadRequest,
		KindExpired:         http.StatusBadRequest,
		KindMismatch:        http.StatusBadRequest,
		KindValidation:      http.StatusBadRequest,
		KindNotFound:        http.StatusNotFound,
		KindUnauthorized:    http.StatusUnauthorized,
		KindForbidden:       http.StatusForbidden,
		KindInternal:        http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, New(kind, "x").StatusCode(), kind)
	}
}

func TestKindOf(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("outer: %w", Wrap(KindExpired, "OTP has expired!", cause))

	assert.Equal(t, KindExpired, KindOf(err))
	assert.True(t, Is(err, KindExpired))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindInternal, KindOf(cause))
	assert.False(t, Is(nil, KindInternal))
	assert.Equal(t, "Internal server error: boom", Internal(cause).Error())
}
