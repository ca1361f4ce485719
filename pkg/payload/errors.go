package payload

import "net/http"

// ValidationError is a structured validation failure carrying field-level
// detail. It surfaces through the boundary-side error translator as a 422
// with per-field metadata.
type ValidationError struct {
	// Fields maps field names to a human-readable failure description.
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "payload validation failed"
}

func (e *ValidationError) StatusCode() int {
	return http.StatusUnprocessableEntity
}

func (e *ValidationError) Metadata() map[string]any {
	m := make(map[string]any, len(e.Fields))
	for k, v := range e.Fields {
		m[k] = v
	}
	return m
}
