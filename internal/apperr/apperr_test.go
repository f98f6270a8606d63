package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("load video: %w", New(NotFound, "video not found"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, NotFound, KindOf(err))
}

func TestIsDistinguishesMessages(t *testing.T) {
	expired := New(Unauthorized, "token expired")
	invalid := New(Unauthorized, "invalid token")

	assert.False(t, errors.Is(expired, invalid))
	assert.True(t, errors.Is(expired, ErrUnauthorized))
}

func TestKindOfUnknownError(t *testing.T) {
	assert.Equal(t, Internal, KindOf(errors.New("boom")))
	assert.Equal(t, "internal server error", Message(errors.New("boom")))
}

func TestMessageHidesInternalCause(t *testing.T) {
	err := Internalf(errors.New("pq: connection refused"), "load account")
	assert.Equal(t, "internal server error", Message(err))
	assert.ErrorContains(t, err, "connection refused")
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		Unauthorized:    http.StatusUnauthorized,
		SessionRevoked:  http.StatusUnauthorized,
		Forbidden:       http.StatusForbidden,
		NotFound:        http.StatusNotFound,
		InvalidArgument: http.StatusBadRequest,
		Conflict:        http.StatusConflict,
		Internal:        http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, HTTPStatus(kind), kind.String())
	}
}
