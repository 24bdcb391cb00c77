package models

// Role is a user's privilege level. The zero value is not a valid role.
type Role string

const (
	RoleUser      Role = "user"
	RoleMember    Role = "member"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleMember, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// IsElevated is true for moderators and admins.
func (r Role) IsElevated() bool {
	return r == RoleModerator || r == RoleAdmin
}

// RoleSet is a set of roles permitted to perform an operation.
type RoleSet []Role

var (
	AdminOnly        = RoleSet{RoleAdmin}
	ModeratorOrAdmin = RoleSet{RoleModerator, RoleAdmin}
	MemberOrAbove    = RoleSet{RoleMember, RoleModerator, RoleAdmin}
)

// Allows is pure set membership; it does not assume any ordering of roles.
func (s RoleSet) Allows(r Role) bool {
	for _, allowed := range s {
		if allowed == r {
			return true
		}
	}
	return false
}
