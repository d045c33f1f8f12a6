package auth

import "time"

// Roles understood by the access-control gate. Matching is exact: admin does
// not implicitly satisfy a supervisor requirement.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleOperator   = "operator"
	RoleViewer     = "viewer"
)

// Access-log actions, named as the audit table records them.
const (
	ActionRegister = "REGISTRO"
	ActionLogin    = "LOGIN"
	ActionLogout   = "LOGOUT"
)

// User is the credential-store record. PasswordHash never leaves the auth
// package boundary.
type User struct {
	ID           int64
	Username     string
	FullName     string
	PasswordHash string
	Role         string
	Active       bool
	LastAccess   *time.Time
	CreatedAt    time.Time
}

// PublicUser is the client-visible projection of a User.
type PublicUser struct {
	ID         int64      `json:"id"`
	Username   string     `json:"username"`
	FullName   string     `json:"nombre_completo"`
	Role       string     `json:"rol"`
	Active     bool       `json:"activo"`
	LastAccess *time.Time `json:"ultimo_acceso,omitempty"`
	CreatedAt  time.Time  `json:"fecha_creacion"`
}

// Public strips the password hash and returns the client-visible fields.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Username:   u.Username,
		FullName:   u.FullName,
		Role:       u.Role,
		Active:     u.Active,
		LastAccess: u.LastAccess,
		CreatedAt:  u.CreatedAt,
	}
}

// Identity is the decoded token payload attached to authenticated requests.
// It is a snapshot taken at login time: a role change does not propagate to
// tokens already in flight.
type Identity struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"rol"`
}

// AccessEntry is one append-only audit record. UserID is nil for events that
// could not be attributed to a known account.
type AccessEntry struct {
	ID         int64             `json:"id"`
	UserID     *int64            `json:"usuario_id,omitempty"`
	Action     string            `json:"accion"`
	IP         string            `json:"ip_address"`
	Details    map[string]string `json:"detalles,omitempty"`
	OccurredAt time.Time         `json:"fecha"`
}

// RegisterInput carries the fields accepted by Register.
type RegisterInput struct {
	Username string
	Password string
	FullName string
	Role     string
	IP       string
}

// ValidRole reports whether the role belongs to the known set.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleSupervisor, RoleOperator, RoleViewer:
		return true
	}
	return false
}
