// Package domain contains core domain types for offline-hub.
package domain

import (
	"errors"
	"time"
)

// ArticleSnapshot is the locally persisted copy of one remote article.
// It mirrors the origin's /api/articles JSON representation field for field.
type ArticleSnapshot struct {
	// ID is the remote article id and the primary key of the mirror.
	ID int64 `json:"id"`
	// Headline is the article title.
	Headline string `json:"headline"`
	// Subheadline is an optional secondary title.
	Subheadline string `json:"subheadline"`
	// Body is plain text with paragraphs separated by blank lines.
	Body string `json:"body"`
	// Summary is the AI-generated summary, if any.
	Summary string `json:"summary"`
	// ImageLink is an absolute or relative image URL. Empty when absent.
	ImageLink string `json:"image_link"`
	// Tags is a comma-joined tag string. Empty when absent.
	Tags string `json:"tags"`
	// Link is the source URL the article was saved from.
	Link string `json:"link"`
	// CreatedAt is the ISO-8601 creation timestamp.
	CreatedAt string `json:"created_at"`
	// UpdatedAt is the ISO-8601 update timestamp and the sole
	// change-detection signal between mirror and origin.
	UpdatedAt string `json:"updated_at"`
	// Favourited marks user-favourited articles.
	Favourited bool `json:"favourited"`
	// Archived marks archived articles, hidden from the listing view.
	Archived bool `json:"archived"`
}

// Validate checks that a snapshot carries the fields the mirror requires.
func (a *ArticleSnapshot) Validate() error {
	if a.ID <= 0 {
		return errors.New("article id must be positive")
	}
	if a.UpdatedAt == "" {
		return errors.New("updated_at is required")
	}
	return nil
}

// NormalizeTimestamp canonicalizes an ISO-8601 timestamp for comparison.
// The origin and the mirror may format the same instant differently
// (trailing zero variance, offset vs Z), so equality checks go through
// this first. Unparseable input is returned unchanged rather than
// aborting a diff.
func NormalizeTimestamp(ts string) string {
	parsed, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return parsed.UTC().Format(time.RFC3339Nano)
}

// SameInstant reports whether two ISO-8601 timestamps denote the same
// instant after normalization.
func SameInstant(a, b string) bool {
	return NormalizeTimestamp(a) == NormalizeTimestamp(b)
}
