package apiclient_test

import (
	"testing"

	"github.com/straye-as/projecthub/internal/apiclient"
	"github.com/stretchr/testify/assert"
)

func TestPathMatcher_Match(t *testing.T) {
	m := apiclient.NewPathMatcher("verification", "verify-code", "/password/reset/")

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "verification segment", path: "/members/verification", want: true},
		{name: "verification with trailing segment", path: "/members/verification/email", want: true},
		{name: "verify code", path: "/verify-code", want: true},
		{name: "password reset", path: "/members/password/reset", want: true},
		{name: "password reset under api prefix", path: "/api/v1/members/password/reset", want: true},
		{name: "query string ignored", path: "/verify-code?x=1", want: true},
		{name: "lookalike plural", path: "/verifications", want: false},
		{name: "password without reset", path: "/members/password", want: false},
		{name: "reset without password", path: "/reset", want: false},
		{name: "reversed segments", path: "/reset/password", want: false},
		{name: "unrelated", path: "/projects/1", want: false},
		{name: "root", path: "/", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Match(tt.path))
		})
	}
}

func TestPathMatcher_NilAndEmpty(t *testing.T) {
	var nilMatcher *apiclient.PathMatcher
	assert.False(t, nilMatcher.Match("/verify-code"))
	assert.False(t, apiclient.NewPathMatcher("", "/").Match("/anything"))
}

func TestPathMatcher_AcceptStatus(t *testing.T) {
	m := apiclient.NewPathMatcher("verify-code")

	tests := []struct {
		name   string
		path   string
		status int
		want   bool
	}{
		{name: "exempt ok", path: "/verify-code", status: 200, want: true},
		{name: "exempt unauthorized", path: "/verify-code", status: 401, want: true},
		{name: "exempt last 4xx", path: "/verify-code", status: 499, want: true},
		{name: "exempt server error", path: "/verify-code", status: 500, want: false},
		{name: "exempt redirect range below 200", path: "/verify-code", status: 199, want: false},
		{name: "regular ok", path: "/projects", status: 200, want: true},
		{name: "regular created", path: "/projects", status: 201, want: true},
		{name: "regular last 2xx", path: "/projects", status: 299, want: true},
		{name: "regular redirect", path: "/projects", status: 302, want: false},
		{name: "regular unauthorized", path: "/projects", status: 401, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.AcceptStatus(tt.path, tt.status))
		})
	}
}
