// Package utils provides shared helpers for offline-hub.
package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer provides HTML sanitization for cached page fragments before
// they are embedded into synthesized offline views.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer creates a new Sanitizer instance with configured policy.
func NewSanitizer() *Sanitizer {
	// UGCPolicy allows the content tags card fragments are built from
	// (p, a, img, strong, em, ...).
	p := bluemonday.UGCPolicy()

	// Card fragments rely on class attributes for responsive layout.
	p.AllowAttrs("class").Globally()

	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)

	return &Sanitizer{
		policy: p,
	}
}

// SanitizeHTML sanitizes the given HTML string and trims surrounding
// whitespace.
func (s *Sanitizer) SanitizeHTML(html string) string {
	return strings.TrimSpace(s.policy.Sanitize(html))
}
