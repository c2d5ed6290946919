package model

import "time"

// Category labels transactions for reporting. System categories have no
// owner, are visible to every user, and cannot be modified or deleted by
// users; user categories are private to their owner.
type Category struct {
	CreatedAt      time.Time
	Name           string
	TranslationKey string
	Type           TransactionType
	ID             int64
	OwnerID        *int64
	IsSystem       bool
}

// VisibleTo reports whether the category can be used by the given owner.
func (c *Category) VisibleTo(ownerID int64) bool {
	if c.IsSystem {
		return true
	}
	return c.OwnerID != nil && *c.OwnerID == ownerID
}
