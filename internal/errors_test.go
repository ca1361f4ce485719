package internal

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/relaykit/relay/pkg/limiter"
	"github.com/relaykit/relay/pkg/payload"
	"github.com/relaykit/relay/pkg/token"
)

func TestRequestError(t *testing.T) {
	t.Parallel()

	cause := errors.New("db gone")
	e := ErrNotFound("user not found", WithCause(cause), WithMeta(map[string]any{"id": 42}))

	require.Equal(t, "user not found", e.Error())
	require.Equal(t, http.StatusNotFound, e.StatusCode())
	require.Equal(t, map[string]any{"id": 42}, e.Metadata())
	require.ErrorIs(t, e, cause)
}

func TestTranslate(t *testing.T) {
	t.Parallel()

	t.Run("structured error surfaces verbatim", func(t *testing.T) {
		t.Parallel()
		status, msg, meta := Translate(ErrUnprocessable("bad input", WithMeta(map[string]any{"name": "required"})))
		require.Equal(t, http.StatusUnprocessableEntity, status)
		require.Equal(t, "bad input", msg)
		require.Equal(t, map[string]any{"name": "required"}, meta)
	})

	t.Run("wrapped structured error is still found", func(t *testing.T) {
		t.Parallel()
		wrapped := fmt.Errorf("step failed: %w", ErrUnauthorized("token expired"))
		status, msg, _ := Translate(wrapped)
		require.Equal(t, http.StatusUnauthorized, status)
		require.Equal(t, "token expired", msg)
	})

	t.Run("collaborator errors translate without adapters", func(t *testing.T) {
		t.Parallel()

		status, msg, _ := Translate(&token.Error{Reason: "invalid token"})
		require.Equal(t, http.StatusUnauthorized, status)
		require.Equal(t, "invalid token", msg)

		status, _, meta := Translate(&payload.ValidationError{Fields: map[string]string{"id": "failed rule \"min\""}})
		require.Equal(t, http.StatusUnprocessableEntity, status)
		require.Equal(t, map[string]any{"id": "failed rule \"min\""}, meta)

		status, _, meta = Translate(&limiter.ExceededError{Key: "k", Limit: 5, Wait: 90 * time.Second})
		require.Equal(t, http.StatusTooManyRequests, status)
		require.EqualValues(t, 5, meta["limit"])
		require.EqualValues(t, 90, meta["retry_after"])
	})

	t.Run("unstructured errors become a generic 500", func(t *testing.T) {
		t.Parallel()
		status, msg, meta := Translate(errors.New("pq: connection refused"))
		require.Equal(t, http.StatusInternalServerError, status)
		require.Equal(t, "internal server error", msg)
		require.Nil(t, meta)
	})
}
