package repository

import (
	"context"

	"clientdesk-data/internal/domain"
)

// ContactFilters list filtering options. All values are already normalized by
// the service layer; empty means "not filtered".
type ContactFilters struct {
	Search    string // free-text match across name/email/phone (ILIKE)
	Email     string // exact, canonical form
	Phone     string // exact, canonical form
	CompanyID string // exact company reference
}

// ContactsRepository data access for contacts.
// Every method is tenant-scoped and excludes soft-deleted rows.
type ContactsRepository interface {
	// GetContact fetches one contact by id. ErrNotFound when missing or deleted.
	GetContact(ctx context.Context, tenantID, contactID string) (*domain.Contact, error)

	// FindByIdentity resolves the dedup target: match by email OR phone when
	// both are supplied, by whichever is present otherwise. When several rows
	// match, the first by (created_at ASC, contact_id ASC) wins. The ordering
	// is part of the contract so the choice stays deterministic.
	FindByIdentity(ctx context.Context, tenantID string, email, phone *string) (*domain.Contact, error)

	// ListContacts returns one page ordered by created_at DESC plus the total
	// count for the same filter set.
	ListContacts(ctx context.Context, tenantID string, filters ContactFilters, offset, limit int) ([]*domain.Contact, int, error)

	// CreateContact inserts a new contact and returns its generated id.
	CreateContact(ctx context.Context, tenantID string, contact *domain.Contact) (string, error)

	// UpdateContact replaces the mutable fields of an existing contact.
	// The created_at timestamp is never touched.
	UpdateContact(ctx context.Context, tenantID, contactID string, contact *domain.Contact) error

	// SoftDeleteContact sets the deletion marker; the row disappears from all
	// subsequent reads and writes.
	SoftDeleteContact(ctx context.Context, tenantID, contactID string) error
}
