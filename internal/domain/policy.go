package domain

// Role is the application role assigned to a user. Users without an explicit
// assignment are members.
type Role string

const (
	RoleMember    Role = "member"
	RoleLibrarian Role = "librarian"
	RoleAdmin     Role = "admin"
)

// ParseRole maps a string to a Role. Unknown or empty values are not valid;
// callers decide whether to default to RoleMember.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleMember, RoleLibrarian, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// Access policy predicates. Pure functions over already-resolved values;
// an absent identity always yields false.

// CanManageBooks reports whether the role may create, edit, or delete books.
func CanManageBooks(role Role) bool {
	return role == RoleLibrarian || role == RoleAdmin
}

// CanManageEvent reports whether the user owns the event.
func CanManageEvent(ownerID, userID string) bool {
	return ownerID != "" && ownerID == userID
}

// CanActOnBorrow reports whether the user may return the borrow: either the
// borrower themselves or someone who may manage books.
func CanActOnBorrow(borrowedBy, userID string, role Role) bool {
	if borrowedBy != "" && borrowedBy == userID {
		return true
	}
	return userID != "" && CanManageBooks(role)
}

// CanInvite reports whether the user may issue invitations for the event.
// Same rule as event management.
func CanInvite(ownerID, userID string) bool {
	return CanManageEvent(ownerID, userID)
}
