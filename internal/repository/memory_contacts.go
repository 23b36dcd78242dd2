package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"clientdesk-data/internal/domain"

	"github.com/google/uuid"
)

// MemoryContactsRepository keeps contacts in memory. It backs unit tests and
// the DB-less dev mode, and mirrors the Postgres implementation's ordering
// and soft-delete semantics exactly.
type MemoryContactsRepository struct {
	mu       sync.RWMutex
	contacts map[string]map[string]*domain.Contact // tenantID -> contactID -> contact
}

// NewMemoryContactsRepository creates an empty in-memory contacts Repository.
func NewMemoryContactsRepository() *MemoryContactsRepository {
	return &MemoryContactsRepository{
		contacts: map[string]map[string]*domain.Contact{},
	}
}

var _ ContactsRepository = (*MemoryContactsRepository)(nil)

func copyContact(c *domain.Contact) *domain.Contact {
	dup := *c
	return &dup
}

func (r *MemoryContactsRepository) GetContact(_ context.Context, tenantID, contactID string) (*domain.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.contacts[tenantID][contactID]
	if !ok || c.DeletedAt != nil {
		return nil, fmt.Errorf("contact %s: %w", contactID, ErrNotFound)
	}
	return copyContact(c), nil
}

func (r *MemoryContactsRepository) FindByIdentity(_ context.Context, tenantID string, email, phone *string) (*domain.Contact, error) {
	if email == nil && phone == nil {
		return nil, fmt.Errorf("email or phone is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := []*domain.Contact{}
	for _, c := range r.contacts[tenantID] {
		if c.DeletedAt != nil {
			continue
		}
		if email != nil && c.Email.Valid && c.Email.String == *email {
			matches = append(matches, c)
			continue
		}
		if phone != nil && c.Phone.Valid && c.Phone.String == *phone {
			matches = append(matches, c)
		}
	}
	if len(matches) == 0 {
		return nil, ErrNotFound
	}
	// Same deterministic ordering as the Postgres query.
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.Before(matches[j].CreatedAt)
		}
		return matches[i].ContactID < matches[j].ContactID
	})
	return copyContact(matches[0]), nil
}

func (r *MemoryContactsRepository) ListContacts(_ context.Context, tenantID string, filters ContactFilters, offset, limit int) ([]*domain.Contact, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 25
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	all := []*domain.Contact{}
	for _, c := range r.contacts[tenantID] {
		if c.DeletedAt != nil {
			continue
		}
		if !matchContact(c, filters) {
			continue
		}
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ContactID > all[j].ContactID
	})

	total := len(all)
	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	page := make([]*domain.Contact, 0, end-start)
	for _, c := range all[start:end] {
		page = append(page, copyContact(c))
	}
	return page, total, nil
}

func matchContact(c *domain.Contact, filters ContactFilters) bool {
	if filters.Search != "" {
		needle := strings.ToLower(filters.Search)
		hay := strings.ToLower(c.Name)
		if c.Email.Valid {
			hay += " " + c.Email.String
		}
		if c.Phone.Valid {
			hay += " " + c.Phone.String
		}
		if !strings.Contains(hay, needle) {
			return false
		}
	}
	if filters.Email != "" && (!c.Email.Valid || c.Email.String != filters.Email) {
		return false
	}
	if filters.Phone != "" && (!c.Phone.Valid || c.Phone.String != filters.Phone) {
		return false
	}
	if filters.CompanyID != "" && (!c.CompanyID.Valid || c.CompanyID.String != filters.CompanyID) {
		return false
	}
	return true
}

func (r *MemoryContactsRepository) CreateContact(_ context.Context, tenantID string, contact *domain.Contact) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.contacts[tenantID] == nil {
		r.contacts[tenantID] = map[string]*domain.Contact{}
	}

	c := copyContact(contact)
	c.ContactID = uuid.NewString()
	c.TenantID = tenantID
	if c.Status == "" {
		c.Status = "active"
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	r.contacts[tenantID][c.ContactID] = c
	return c.ContactID, nil
}

func (r *MemoryContactsRepository) UpdateContact(_ context.Context, tenantID, contactID string, contact *domain.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.contacts[tenantID][contactID]
	if !ok || existing.DeletedAt != nil {
		return fmt.Errorf("contact %s: %w", contactID, ErrNotFound)
	}

	c := copyContact(contact)
	c.ContactID = contactID
	c.TenantID = tenantID
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now()
	r.contacts[tenantID][contactID] = c
	return nil
}

func (r *MemoryContactsRepository) SoftDeleteContact(_ context.Context, tenantID, contactID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.contacts[tenantID][contactID]
	if !ok || existing.DeletedAt != nil {
		return fmt.Errorf("contact %s: %w", contactID, ErrNotFound)
	}
	now := time.Now()
	existing.DeletedAt = &now
	existing.UpdatedAt = now
	return nil
}
