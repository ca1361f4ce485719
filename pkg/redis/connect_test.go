package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenURLValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, err := Open(ctx, "")
	require.ErrorIs(t, err, ErrEmptyConnectionURL)

	_, err = Open(ctx, "http://localhost:6379")
	require.ErrorIs(t, err, ErrFailedToParseURL)

	_, err = Open(ctx, "redis://localhost:6379/not-a-db")
	require.ErrorIs(t, err, ErrFailedToParseURL)
}
