// Package payload validates call payloads against per-route schemas,
// coercing and defaulting field values on the way through.
package payload

// Kind is the expected type of a payload field. Values arriving as strings
// (query parameters, path segments) are coerced to the declared kind.
type Kind string

const (
	String Kind = "string"
	Int    Kind = "int"
	Float  Kind = "float"
	Bool   Kind = "bool"

	// Any accepts the value as-is.
	Any Kind = "any"
)

// Field describes one payload field.
type Field struct {
	// Type is the expected kind. Zero value behaves like Any.
	Type Kind

	// Required rejects payloads missing this field (after defaulting).
	Required bool

	// Default is substituted when the field is absent.
	Default any

	// Rules is an optional go-playground/validator tag expression applied
	// to the coerced value, e.g. "min=1,max=100".
	Rules string
}

// Schema maps field names to their descriptors.
type Schema map[string]Field
