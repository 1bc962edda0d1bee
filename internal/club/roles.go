package club

import "fmt"

type Role string

const (
	RoleOwner   Role = "owner"
	RoleAdmin   Role = "admin"
	RolePending Role = "pending"
	RoleVisitor Role = "visitor"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleOwner, RoleAdmin, RolePending, RoleVisitor:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Actor is the identity behind a call, resolved by the auth layer.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) CanManage() bool {
	return a.Role == RoleOwner || a.Role == RoleAdmin
}

func requireManager(a Actor) error {
	if !a.CanManage() {
		return ErrForbidden
	}
	return nil
}
