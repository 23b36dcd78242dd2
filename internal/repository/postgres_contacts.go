package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"clientdesk-data/internal/domain"
)

// PostgresContactsRepository contacts Repository implementation.
// All queries carry the tenant predicate and `deleted_at IS NULL`.
type PostgresContactsRepository struct {
	db *sql.DB
}

// NewPostgresContactsRepository creates the contacts Repository.
func NewPostgresContactsRepository(db *sql.DB) *PostgresContactsRepository {
	return &PostgresContactsRepository{db: db}
}

var _ ContactsRepository = (*PostgresContactsRepository)(nil)

const contactColumns = `
	contact_id::text,
	tenant_id::text,
	name,
	email,
	phone,
	role,
	company_name,
	company_id::text,
	status,
	stage,
	source,
	notes,
	birth_date,
	last_interaction_at,
	last_purchase_date,
	total_value,
	created_at,
	updated_at
`

// scanContact maps one row onto domain.Contact, handling nullable columns.
func scanContact(scan func(dest ...any) error) (*domain.Contact, error) {
	var c domain.Contact
	var birthDate, lastInteractionAt, lastPurchaseDate sql.NullTime
	err := scan(
		&c.ContactID,
		&c.TenantID,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.Role,
		&c.CompanyName,
		&c.CompanyID,
		&c.Status,
		&c.Stage,
		&c.Source,
		&c.Notes,
		&birthDate,
		&lastInteractionAt,
		&lastPurchaseDate,
		&c.TotalValue,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if birthDate.Valid {
		c.BirthDate = &birthDate.Time
	}
	if lastInteractionAt.Valid {
		c.LastInteractionAt = &lastInteractionAt.Time
	}
	if lastPurchaseDate.Valid {
		c.LastPurchaseDate = &lastPurchaseDate.Time
	}
	return &c, nil
}

// GetContact fetches one contact by contact_id.
func (r *PostgresContactsRepository) GetContact(ctx context.Context, tenantID, contactID string) (*domain.Contact, error) {
	if tenantID == "" || contactID == "" {
		return nil, fmt.Errorf("tenant_id and contact_id are required")
	}

	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE tenant_id = $1::uuid AND contact_id = $2::uuid AND deleted_at IS NULL
	`

	row := r.db.QueryRowContext(ctx, query, tenantID, contactID)
	contact, err := scanContact(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("contact %s: %w", contactID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return contact, nil
}

// FindByIdentity resolves the dedup target by canonical email and/or phone.
// Ordering by (created_at ASC, contact_id ASC) keeps the winner deterministic
// when both keys match different rows.
func (r *PostgresContactsRepository) FindByIdentity(ctx context.Context, tenantID string, email, phone *string) (*domain.Contact, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant_id is required")
	}
	if email == nil && phone == nil {
		return nil, fmt.Errorf("email or phone is required")
	}

	where := []string{"tenant_id = $1::uuid", "deleted_at IS NULL"}
	args := []any{tenantID}
	argIdx := 2

	identity := []string{}
	if email != nil {
		identity = append(identity, fmt.Sprintf("email = $%d", argIdx))
		args = append(args, *email)
		argIdx++
	}
	if phone != nil {
		identity = append(identity, fmt.Sprintf("phone = $%d", argIdx))
		args = append(args, *phone)
		argIdx++
	}
	where = append(where, "("+strings.Join(identity, " OR ")+")")

	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at ASC, contact_id ASC
		LIMIT 1
	`

	row := r.db.QueryRowContext(ctx, query, args...)
	contact, err := scanContact(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find contact by identity: %w", err)
	}
	return contact, nil
}

// ListContacts returns one page (created_at DESC) plus the total count.
func (r *PostgresContactsRepository) ListContacts(ctx context.Context, tenantID string, filters ContactFilters, offset, limit int) ([]*domain.Contact, int, error) {
	if tenantID == "" {
		return nil, 0, fmt.Errorf("tenant_id is required")
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 25
	}

	where := []string{"tenant_id = $1::uuid", "deleted_at IS NULL"}
	args := []any{tenantID}
	argIdx := 2

	if filters.Search != "" {
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d)", argIdx, argIdx, argIdx))
		args = append(args, "%"+filters.Search+"%")
		argIdx++
	}
	if filters.Email != "" {
		where = append(where, fmt.Sprintf("email = $%d", argIdx))
		args = append(args, filters.Email)
		argIdx++
	}
	if filters.Phone != "" {
		where = append(where, fmt.Sprintf("phone = $%d", argIdx))
		args = append(args, filters.Phone)
		argIdx++
	}
	if filters.CompanyID != "" {
		where = append(where, fmt.Sprintf("company_id = $%d::uuid", argIdx))
		args = append(args, filters.CompanyID)
		argIdx++
	}

	whereClause := "WHERE " + strings.Join(where, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM contacts %s`, whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count contacts: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM contacts
		%s
		ORDER BY created_at DESC, contact_id DESC
		LIMIT $%d OFFSET $%d
	`, contactColumns, whereClause, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	contacts := []*domain.Contact{}
	for rows.Next() {
		contact, err := scanContact(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, contact)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate contacts: %w", err)
	}

	return contacts, total, nil
}

// CreateContact inserts a new contact and returns the generated id.
func (r *PostgresContactsRepository) CreateContact(ctx context.Context, tenantID string, contact *domain.Contact) (string, error) {
	if tenantID == "" {
		return "", fmt.Errorf("tenant_id is required")
	}

	query := `
		INSERT INTO contacts (
			tenant_id, name, email, phone, role, company_name, company_id,
			status, stage, source, notes,
			birth_date, last_interaction_at, last_purchase_date, total_value
		) VALUES (
			$1::uuid, $2, $3, $4, $5, $6, $7::uuid,
			$8, $9, $10, $11,
			$12, $13, $14, $15
		)
		RETURNING contact_id::text
	`

	status := contact.Status
	if status == "" {
		status = "active"
	}

	var contactID string
	err := r.db.QueryRowContext(ctx, query,
		tenantID,
		contact.Name,
		contact.Email,
		contact.Phone,
		contact.Role,
		contact.CompanyName,
		contact.CompanyID,
		status,
		contact.Stage,
		contact.Source,
		contact.Notes,
		nullTime(contact.BirthDate),
		nullTime(contact.LastInteractionAt),
		nullTime(contact.LastPurchaseDate),
		contact.TotalValue,
	).Scan(&contactID)
	if err != nil {
		return "", fmt.Errorf("failed to create contact: %w", err)
	}
	return contactID, nil
}

// UpdateContact replaces the mutable fields; created_at stays untouched.
func (r *PostgresContactsRepository) UpdateContact(ctx context.Context, tenantID, contactID string, contact *domain.Contact) error {
	if tenantID == "" || contactID == "" {
		return fmt.Errorf("tenant_id and contact_id are required")
	}

	query := `
		UPDATE contacts SET
			name = $3,
			email = $4,
			phone = $5,
			role = $6,
			company_name = $7,
			company_id = $8::uuid,
			status = $9,
			stage = $10,
			source = $11,
			notes = $12,
			birth_date = $13,
			last_interaction_at = $14,
			last_purchase_date = $15,
			total_value = $16,
			updated_at = NOW()
		WHERE tenant_id = $1::uuid AND contact_id = $2::uuid AND deleted_at IS NULL
	`

	res, err := r.db.ExecContext(ctx, query,
		tenantID,
		contactID,
		contact.Name,
		contact.Email,
		contact.Phone,
		contact.Role,
		contact.CompanyName,
		contact.CompanyID,
		contact.Status,
		contact.Stage,
		contact.Source,
		contact.Notes,
		nullTime(contact.BirthDate),
		nullTime(contact.LastInteractionAt),
		nullTime(contact.LastPurchaseDate),
		contact.TotalValue,
	)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("contact %s: %w", contactID, ErrNotFound)
	}
	return nil
}

// SoftDeleteContact sets the deletion marker.
func (r *PostgresContactsRepository) SoftDeleteContact(ctx context.Context, tenantID, contactID string) error {
	if tenantID == "" || contactID == "" {
		return fmt.Errorf("tenant_id and contact_id are required")
	}

	query := `
		UPDATE contacts
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE tenant_id = $1::uuid AND contact_id = $2::uuid AND deleted_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, tenantID, contactID)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("contact %s: %w", contactID, ErrNotFound)
	}
	return nil
}

// nullTime converts *time.Time to the driver-level nullable form.
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
