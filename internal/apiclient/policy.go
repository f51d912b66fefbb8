package apiclient

import "strings"

// PathMatcher recognises the endpoints whose 401 belongs to the calling form
// (wrong verification code, failed password reset) rather than to the session.
// Patterns match whole path segments, so "verification" matches
// /members/verification but not /verifications.
type PathMatcher struct {
	patterns [][]string
}

// NewPathMatcher builds a matcher from slash-separated fragments
func NewPathMatcher(fragments ...string) *PathMatcher {
	m := &PathMatcher{}
	for _, f := range fragments {
		if segs := segments(f); len(segs) > 0 {
			m.patterns = append(m.patterns, segs)
		}
	}
	return m
}

// Match reports whether path contains any pattern as consecutive segments
func (m *PathMatcher) Match(path string) bool {
	if m == nil {
		return false
	}
	segs := segments(path)
	for _, p := range m.patterns {
		if containsRun(segs, p) {
			return true
		}
	}
	return false
}

// AcceptStatus is the status-validation policy: exempt paths read any status
// below 500 as a normal body, everything else only 2xx
func (m *PathMatcher) AcceptStatus(path string, status int) bool {
	if m.Match(path) {
		return status >= 200 && status < 500
	}
	return status >= 200 && status < 300
}

func segments(path string) []string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	var out []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func containsRun(haystack, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return false
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j := range needle {
			if haystack[i+j] != needle[j] {
				continue outer
			}
		}
		return true
	}
	return false
}
