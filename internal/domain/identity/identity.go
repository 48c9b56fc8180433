package identity

import "github.com/google/uuid"

// Role mirrors the role claim issued by the auth service.
type Role string

const (
	RoleCustomer Role = "Customer"
	RoleProvider Role = "Provider"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleProvider
}

// Identity is the authenticated caller extracted from a request token.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}
