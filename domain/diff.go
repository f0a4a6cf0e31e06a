package domain

import "fmt"

// ChangeSet is the result of diffing the remote article set against the
// local mirror. Ids partition into exactly new, updated, deleted and
// unchanged with no overlap.
type ChangeSet struct {
	// New are remote articles absent from the mirror.
	New []ArticleSnapshot
	// Updated are remote articles whose updated_at differs from the
	// mirrored copy.
	Updated []ArticleSnapshot
	// DeletedIDs are mirrored ids absent from the remote set.
	DeletedIDs []int64
	// UnchangedIDs are ids present on both sides with equal updated_at.
	UnchangedIDs []int64
}

// HasChanges reports whether applying the ChangeSet would mutate the mirror.
func (c *ChangeSet) HasChanges() bool {
	return len(c.New) > 0 || len(c.Updated) > 0 || len(c.DeletedIDs) > 0
}

// Upserts returns the articles to write to the mirror (new then updated).
func (c *ChangeSet) Upserts() []ArticleSnapshot {
	upserts := make([]ArticleSnapshot, 0, len(c.New)+len(c.Updated))
	upserts = append(upserts, c.New...)
	upserts = append(upserts, c.Updated...)
	return upserts
}

// Summary returns a short human-readable description of the ChangeSet.
func (c *ChangeSet) Summary() string {
	return fmt.Sprintf("%d new, %d updated, %d deleted", len(c.New), len(c.Updated), len(c.DeletedIDs))
}

// DetectChanges diffs the remote article set against the local mirror.
// Change detection uses updated_at equality only; two snapshots with the
// same id and the same (normalized) updated_at are considered identical
// regardless of other field differences.
func DetectChanges(remote, local []ArticleSnapshot) *ChangeSet {
	localByID := make(map[int64]ArticleSnapshot, len(local))
	for _, a := range local {
		localByID[a.ID] = a
	}

	remoteIDs := make(map[int64]bool, len(remote))
	changes := &ChangeSet{}

	for _, r := range remote {
		remoteIDs[r.ID] = true

		l, exists := localByID[r.ID]
		if !exists {
			changes.New = append(changes.New, r)
			continue
		}
		if SameInstant(r.UpdatedAt, l.UpdatedAt) {
			changes.UnchangedIDs = append(changes.UnchangedIDs, r.ID)
		} else {
			changes.Updated = append(changes.Updated, r)
		}
	}

	for _, l := range local {
		if !remoteIDs[l.ID] {
			changes.DeletedIDs = append(changes.DeletedIDs, l.ID)
		}
	}

	return changes
}
