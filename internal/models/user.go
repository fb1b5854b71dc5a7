package models

// Role is the staff role assigned by the backend
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleDentist      Role = "DENTISTA"
	RoleReceptionist Role = "RECEPCIONISTA"
)

var roleLabels = map[Role]string{
	RoleAdmin:        "Administrador",
	RoleDentist:      "Dentista",
	RoleReceptionist: "Recepcionista",
}

func (r Role) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

func (r Role) Label() string {
	if l, ok := roleLabels[r]; ok {
		return l
	}
	return string(r)
}

// CanEditChart reports whether the role may append odontogram entries.
func (r Role) CanEditChart() bool {
	return r == RoleAdmin || r == RoleDentist
}

func Roles() []Role {
	return []Role{RoleAdmin, RoleDentist, RoleReceptionist}
}

type User struct {
	ID        int    `json:"id"`
	Name      string `json:"nome"`
	Email     string `json:"email"`
	Role      Role   `json:"cargo"`
	Active    bool   `json:"ativo"`
	CreatedAt string `json:"dataCriacao,omitempty"`
}

// Complete reports whether a persisted user carries enough to drive the UI.
func (u *User) Complete() bool {
	return u != nil && u.ID > 0 && u.Email != "" && u.Role.Valid()
}

// UserRef is the compact {id, nome} shape embedded in odontogram records
type UserRef struct {
	ID   int    `json:"id"`
	Name string `json:"nome"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"senha"`
}

// AuthResponse is the backend's reply to a successful login
type AuthResponse struct {
	Token string `json:"token"`
	Type  string `json:"tipo"`
	User  *User  `json:"usuario"`
}

// RegisterRequest creates a staff account (POST /auth/register or /usuarios)
type RegisterRequest struct {
	Name     string `json:"nome"`
	Email    string `json:"email"`
	Password string `json:"senha"`
	Role     Role   `json:"cargo"`
}

// UpdateUserRequest edits a staff account; an empty password keeps the current one
type UpdateUserRequest struct {
	Name     string `json:"nome"`
	Email    string `json:"email"`
	Password string `json:"senha,omitempty"`
	Role     Role   `json:"cargo"`
}
