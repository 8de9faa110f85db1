package entry

import "bloglist/internal/domain/identity"

// CanDelete reports whether actor owns e. Unresolved owners and
// anonymous actors are never allowed.
func CanDelete(actor identity.Identity, e *Entry) bool {
	if e == nil || actor.IsZero() || e.Owner.IsZero() {
		return false
	}
	return actor.UserID == e.Owner.ID
}
