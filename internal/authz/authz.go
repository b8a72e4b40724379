// Package authz implements the role gate: a pure predicate deciding whether
// a guarded surface is visible to the current session. It never redirects,
// never fetches and has no failure mode; an unauthorized user simply sees
// nothing.
package authz

import "qc-console/internal/model"

// Allowed reports whether user's role is a member of the allow-list.
// A nil user (no session) and an empty allow-list both deny.
func Allowed(user *model.User, roles ...string) bool {
	if user == nil || len(roles) == 0 {
		return false
	}

	return user.HasRole(roles...)
}
