package services

import (
	"github.com/dlopezkluever/wizardirector/internal/domain"
)

// RecordEdit returns the override set a local copy should carry after a
// field-level edit. Unlinked copies are not tracked, so their set passes
// through unchanged. The tracker only ever grows the set; clearing a field
// is exclusively the sync engine's job when the user force-accepts the
// library value.
func RecordEdit(local *domain.LocalAsset, changed domain.FieldSet) domain.FieldSet {
	if local == nil {
		return nil
	}
	if !local.Linked() {
		return local.OverriddenFields
	}
	tracked := domain.FieldSet{}
	for f := range changed {
		if domain.IsSyncableField(f) {
			tracked[f] = struct{}{}
		}
	}
	return local.OverriddenFields.Union(tracked)
}
