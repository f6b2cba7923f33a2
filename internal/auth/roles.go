package auth

// Role is the closed set of account roles. Authorization sites must switch
// exhaustively; unknown strings parse to RoleUser.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superAdmin"
	RoleVendor     Role = "vendor"
)

func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin
	case RoleSuperAdmin:
		return RoleSuperAdmin
	case RoleVendor:
		return RoleVendor
	case RoleUser:
		return RoleUser
	default:
		return RoleUser
	}
}

func (r Role) String() string { return string(r) }
