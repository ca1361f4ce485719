// Package internal contains the request-dispatch core: route compilation,
// the per-call request context, the middleware pipeline, and the error
// translation applied at the transport boundary.
//
// The public API is re-exported from the root relay package.
package internal
