package payload

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	v := New()
	ctx := context.Background()

	t.Run("coerces string inputs to declared kinds", func(t *testing.T) {
		t.Parallel()
		out, err := v.Validate(ctx, map[string]any{
			"id":      "42",
			"ratio":   "0.5",
			"dry_run": "true",
			"name":    "alice",
		}, Schema{
			"id":      {Type: Int},
			"ratio":   {Type: Float},
			"dry_run": {Type: Bool},
			"name":    {Type: String},
		})
		require.NoError(t, err)
		require.Equal(t, int64(42), out["id"])
		require.Equal(t, 0.5, out["ratio"])
		require.Equal(t, true, out["dry_run"])
		require.Equal(t, "alice", out["name"])
	})

	t.Run("whole floats coerce to int, fractional ones fail", func(t *testing.T) {
		t.Parallel()
		out, err := v.Validate(ctx, map[string]any{"id": float64(42)}, Schema{"id": {Type: Int}})
		require.NoError(t, err)
		require.Equal(t, int64(42), out["id"])

		_, err = v.Validate(ctx, map[string]any{"id": 42.5}, Schema{"id": {Type: Int}})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "must be an integer", verr.Fields["id"])
	})

	t.Run("defaults substitute absent fields", func(t *testing.T) {
		t.Parallel()
		out, err := v.Validate(ctx, nil, Schema{
			"limit": {Type: Int, Default: 20},
		})
		require.NoError(t, err)
		require.Equal(t, int64(20), out["limit"])
	})

	t.Run("required rejects absent fields after defaulting", func(t *testing.T) {
		t.Parallel()
		_, err := v.Validate(ctx, map[string]any{}, Schema{
			"id":    {Type: Int, Required: true},
			"limit": {Type: Int, Required: true, Default: 20},
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, map[string]string{"id": "required"}, verr.Fields)
	})

	t.Run("nil values count as absent", func(t *testing.T) {
		t.Parallel()
		_, err := v.Validate(ctx, map[string]any{"id": nil}, Schema{"id": {Required: true}})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "required", verr.Fields["id"])
	})

	t.Run("rules run against the coerced value", func(t *testing.T) {
		t.Parallel()
		out, err := v.Validate(ctx, map[string]any{"id": "5"}, Schema{
			"id": {Type: Int, Rules: "min=1,max=100"},
		})
		require.NoError(t, err)
		require.Equal(t, int64(5), out["id"])

		_, err = v.Validate(ctx, map[string]any{"id": "0"}, Schema{
			"id": {Type: Int, Rules: "min=1,max=100"},
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, `failed rule "min"`, verr.Fields["id"])
	})

	t.Run("collects every offending field", func(t *testing.T) {
		t.Parallel()
		_, err := v.Validate(ctx, map[string]any{"id": "nope"}, Schema{
			"id":   {Type: Int},
			"name": {Type: String, Required: true},
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Fields, 2)
	})

	t.Run("undeclared fields pass through untouched", func(t *testing.T) {
		t.Parallel()
		out, err := v.Validate(ctx, map[string]any{"extra": []int{1, 2}}, Schema{})
		require.NoError(t, err)
		require.Equal(t, []int{1, 2}, out["extra"])
	})

	t.Run("does not mutate the input map", func(t *testing.T) {
		t.Parallel()
		in := map[string]any{"id": "42"}
		out, err := v.Validate(ctx, in, Schema{"id": {Type: Int}})
		require.NoError(t, err)
		require.Equal(t, "42", in["id"])
		require.Equal(t, int64(42), out["id"])
	})

	t.Run("zero kind accepts anything", func(t *testing.T) {
		t.Parallel()
		out, err := v.Validate(ctx, map[string]any{"blob": map[string]any{"k": 1}}, Schema{
			"blob": {Required: true},
		})
		require.NoError(t, err)
		require.Equal(t, map[string]any{"k": 1}, out["blob"])
	})

	t.Run("strict string kind rejects non-strings", func(t *testing.T) {
		t.Parallel()
		_, err := v.Validate(ctx, map[string]any{"name": 42}, Schema{"name": {Type: String}})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "must be a string", verr.Fields["name"])
	})
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	e := &ValidationError{Fields: map[string]string{"id": "required", "name": "must be a string"}}
	require.Equal(t, 422, e.StatusCode())
	require.Contains(t, e.Error(), "validation failed")
	require.Equal(t, map[string]any{"id": "required", "name": "must be a string"}, e.Metadata())
}
