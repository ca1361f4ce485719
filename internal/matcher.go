package internal

import "strings"

// pathMatcher is the compiled form of a route address. Path-addressed routes
// compile their pattern into an ordered segment list with named captures;
// name-addressed routes keep only the logical name. Compilation happens once
// at registration, matching is allocation-light and safe for concurrent use.
type pathMatcher struct {
	name     string
	segments []pathSegment
	keys     []string
	isPath   bool
}

// pathSegment is one element of a compiled pattern: either a literal that
// must compare equal, or a named capture.
type pathSegment struct {
	literal string
	param   string
}

func compileMatcher(r *Route) *pathMatcher {
	if r.pattern == "" {
		return &pathMatcher{name: r.name}
	}

	parts := splitPath(r.pattern)
	m := &pathMatcher{isPath: true, segments: make([]pathSegment, 0, len(parts))}
	for _, p := range parts {
		if strings.HasPrefix(p, ":") {
			key := p[1:]
			m.segments = append(m.segments, pathSegment{param: key})
			m.keys = append(m.keys, key)
			continue
		}
		m.segments = append(m.segments, pathSegment{literal: p})
	}
	return m
}

// match applies the matcher to the call context. Which addressing mode runs
// is decided by the context: a populated Path selects pattern matching, an
// empty Path selects exact-name comparison. Never both.
//
// On a pattern match, captured values are written into rc.Payload in pattern
// order, overwriting any pre-existing keys of the same name.
func (m *pathMatcher) match(rc *RequestContext) bool {
	if rc.Path != "" {
		if !m.isPath {
			return false
		}

		parts := splitPath(rc.Path)
		if len(parts) != len(m.segments) {
			return false
		}
		for i, seg := range m.segments {
			if seg.param == "" && seg.literal != parts[i] {
				return false
			}
		}

		if len(m.keys) > 0 {
			if rc.Payload == nil {
				rc.Payload = make(map[string]any)
			}
			for i, seg := range m.segments {
				if seg.param != "" {
					rc.Payload[seg.param] = parts[i]
				}
			}
		}
		return true
	}

	return !m.isPath && rc.Name != "" && rc.Name == m.name
}

// splitPath breaks a path into its segments, ignoring leading and trailing
// slashes. The root path yields no segments.
func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
