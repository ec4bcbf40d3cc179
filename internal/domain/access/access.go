// Package access holds the single capability check used by every
// ownership-sensitive operation.
package access

import (
	"fmt"

	"github.com/obakengshepherd/InsureClaim/internal/domain/entity"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Role   entity.UserRole
	Email  string
	Name   string
}

func (p Principal) IsAdmin() bool { return p.Role == entity.RoleAdmin }

type Capability int

const (
	// ReadOwned: admins, or the owner of the resource.
	ReadOwned Capability = iota + 1
	// WriteOnBehalf: admins and agents for anyone, customers for themselves.
	WriteOnBehalf
	// Administer: admins only.
	Administer
)

func (c Capability) String() string {
	switch c {
	case ReadOwned:
		return "read"
	case WriteOnBehalf:
		return "write"
	case Administer:
		return "administer"
	}
	return "unknown"
}

// Allowed reports whether p holds capability c over a resource owned by ownerID.
func Allowed(p Principal, c Capability, ownerID string) bool {
	if p.UserID == "" || !p.Role.Valid() {
		return false
	}
	switch c {
	case ReadOwned:
		return p.IsAdmin() || p.UserID == ownerID
	case WriteOnBehalf:
		return p.IsAdmin() || p.Role == entity.RoleAgent || p.UserID == ownerID
	case Administer:
		return p.IsAdmin()
	}
	return false
}

// Check is Allowed returning an entity.ErrForbidden-wrapped error on denial.
func Check(p Principal, c Capability, ownerID string) error {
	if Allowed(p, c, ownerID) {
		return nil
	}
	return fmt.Errorf("%w: %s not permitted", entity.ErrForbidden, c)
}

// OwnerScope is the owner filter for list reads: empty for admins (all
// rows), otherwise the caller's own id.
func OwnerScope(p Principal) string {
	if p.IsAdmin() {
		return ""
	}
	return p.UserID
}
