package internal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPathMatcher(t *testing.T) {
	t.Parallel()

	t.Run("injects named segments into payload", func(t *testing.T) {
		t.Parallel()
		m := compileMatcher(NewRoute("/users/:id/posts/:postId", echoController))

		rc := &RequestContext{Path: "/users/42/posts/7"}
		require.True(t, m.match(rc))
		require.Equal(t, map[string]any{"id": "42", "postId": "7"}, rc.Payload)
	})

	t.Run("overwrites pre-existing payload keys", func(t *testing.T) {
		t.Parallel()
		m := compileMatcher(NewRoute("/users/:id", echoController))

		rc := &RequestContext{Path: "/users/42", Payload: map[string]any{"id": "stale", "other": 1}}
		require.True(t, m.match(rc))
		require.Equal(t, "42", rc.Payload["id"])
		require.Equal(t, 1, rc.Payload["other"])
	})

	t.Run("literal mismatch", func(t *testing.T) {
		t.Parallel()
		m := compileMatcher(NewRoute("/users/:id", echoController))

		rc := &RequestContext{Path: "/posts/42"}
		require.False(t, m.match(rc))
		require.Nil(t, rc.Payload)
	})

	t.Run("segment count mismatch", func(t *testing.T) {
		t.Parallel()
		m := compileMatcher(NewRoute("/users/:id", echoController))

		require.False(t, m.match(&RequestContext{Path: "/users"}))
		require.False(t, m.match(&RequestContext{Path: "/users/42/extra"}))
	})

	t.Run("trailing slash is tolerated", func(t *testing.T) {
		t.Parallel()
		m := compileMatcher(NewRoute("/users/:id", echoController))

		rc := &RequestContext{Path: "/users/42/"}
		require.True(t, m.match(rc))
		require.Equal(t, "42", rc.Payload["id"])
	})

	t.Run("static pattern", func(t *testing.T) {
		t.Parallel()
		m := compileMatcher(NewRoute("/health", echoController))

		rc := &RequestContext{Path: "/health"}
		require.True(t, m.match(rc))
		require.Nil(t, rc.Payload)
	})

	t.Run("name match is exact and case-sensitive", func(t *testing.T) {
		t.Parallel()
		m := compileMatcher(NewNamedRoute("getUser", echoController))

		require.True(t, m.match(&RequestContext{Name: "getUser"}))
		require.False(t, m.match(&RequestContext{Name: "getuser"}))
		require.False(t, m.match(&RequestContext{Name: "getUserX"}))
		require.False(t, m.match(&RequestContext{}))
	})

	t.Run("path context never matches a name route", func(t *testing.T) {
		t.Parallel()
		m := compileMatcher(NewNamedRoute("getUser", echoController))

		require.False(t, m.match(&RequestContext{Path: "/getUser"}))
	})

	t.Run("name context never matches a path route", func(t *testing.T) {
		t.Parallel()
		m := compileMatcher(NewRoute("/users/:id", echoController))

		require.False(t, m.match(&RequestContext{Name: "/users/:id"}))
	})
}
