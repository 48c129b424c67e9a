package types

// Roles supplied by the auth collaborator. The core trusts the identity on
// every call and never re-verifies credentials; token issuance and password
// mechanics live entirely with the collaborator.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleUser       = "user"
)

// validRoles is the set of recognized role values.
var validRoles = map[string]bool{
	RoleAdmin:      true,
	RoleSupervisor: true,
	RoleUser:       true,
}

// Identity is the authenticated caller as asserted by the auth
// collaborator.
type Identity struct {
	UserID string
	Name   string
	Role   string
}

// Validate checks that the identity carries an ID and a recognized role.
func (id Identity) Validate() error {
	if id.UserID == "" {
		return ErrInvalidID
	}
	if !validRoles[id.Role] {
		return ErrInvalidRole
	}
	return nil
}

// CanManageCatalog reports whether the role may create, edit, or delete
// catalog records and decide requests.
func (id Identity) CanManageCatalog() bool {
	return id.Role == RoleAdmin
}

// CanViewAlerts reports whether the role may read the alert feed.
// Supervisors see alerts but not the pending-request category; that
// filtering happens in the deriver.
func (id Identity) CanViewAlerts() bool {
	return id.Role == RoleAdmin || id.Role == RoleSupervisor
}
