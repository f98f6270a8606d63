// Package ownership enforces that only the owning account mutates a resource.
package ownership

import (
	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/models"
)

// Owned is implemented by every resource with a single owning account.
type Owned interface {
	OwnerAccountID() string
}

// ErrNotOwner is returned when the identity does not own the resource.
var ErrNotOwner = apperr.New(apperr.Forbidden, "you are not allowed to modify this resource")

// AssertOwner fails with ErrNotOwner unless identity owns resource.
func AssertOwner(resource Owned, identity models.Identity) error {
	owner := resource.OwnerAccountID()
	if owner == "" || identity.AccountID == "" || owner != identity.AccountID {
		return ErrNotOwner
	}
	return nil
}
