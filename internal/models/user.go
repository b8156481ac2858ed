package models

// Role is the access level of an application user. Permission checks happen
// outside the ledger; the store only persists users.
type Role string

const (
	RoleOwner         Role = "Owner"
	RoleTechnicalTeam Role = "Technical Team"
	RoleWorker        Role = "Worker"
	RoleStaff         Role = "Staff"

	// RoleMaster is the pre-rename spelling of RoleTechnicalTeam.
	RoleMaster Role = "Master"
)

// RecognizedRoles lists every role a stored user may have.
var RecognizedRoles = []Role{RoleTechnicalTeam, RoleOwner, RoleWorker, RoleStaff}

// Recognized reports whether r is in RecognizedRoles.
func (r Role) Recognized() bool {
	for _, known := range RecognizedRoles {
		if r == known {
			return true
		}
	}
	return false
}

// User is an application account.
type User struct {
	Username    string          `json:"user"`
	Password    string          `json:"pass,omitempty"`
	Role        Role            `json:"role"`
	Permissions map[string]bool `json:"permissions,omitempty"`
}

// Clone copies the permissions map too.
func (u User) Clone() User {
	if u.Permissions != nil {
		perms := make(map[string]bool, len(u.Permissions))
		for k, v := range u.Permissions {
			perms[k] = v
		}
		u.Permissions = perms
	}
	return u
}

// UserPatch lists the fields UpdateUser may change. Nil fields are left alone.
type UserPatch struct {
	Password    *string
	Role        *Role
	Permissions map[string]bool
}

// Apply returns u with the patch applied.
func (p UserPatch) Apply(u User) User {
	u = u.Clone()
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Permissions != nil {
		u.Permissions = User{Permissions: p.Permissions}.Clone().Permissions
	}
	return u
}

// PassChangeRequest asks an administrator to reset a user's password.
type PassChangeRequest struct {
	Username    string `json:"user"`
	NewPassword string `json:"newPass,omitempty"`
	RequestedAt string `json:"date,omitempty"`
}

// SignupRequest is a pending account registration.
type SignupRequest struct {
	Username    string `json:"user"`
	Password    string `json:"pass,omitempty"`
	RequestedAt string `json:"date,omitempty"`
}

// Thresholds maps ItemKey(product, size) to a low-stock alert level.
type Thresholds map[string]int

// Clone returns a copy of the map.
func (t Thresholds) Clone() Thresholds {
	out := make(Thresholds, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}
