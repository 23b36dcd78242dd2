package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"clientdesk-data/internal/domain"
	"clientdesk-data/internal/normalize"
	"clientdesk-data/internal/repository"

	"go.uber.org/zap"
)

// Upsert action tags returned to the API caller.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
)

// ContactService contact read/write operations.
type ContactService interface {
	ListContacts(ctx context.Context, req ListContactsRequest) (*ListContactsResponse, error)
	GetContact(ctx context.Context, tenantID, contactID string) (*ContactDTO, error)

	// UpsertContact normalizes the payload, resolves the dedup target by
	// email/phone and performs exactly one create or one update.
	UpsertContact(ctx context.Context, tenantID string, patch ContactPatch) (*UpsertContactResponse, error)

	// PatchContact applies only the fields present in the payload.
	PatchContact(ctx context.Context, tenantID, contactID string, patch ContactPatch) (*ContactDTO, error)

	DeleteContact(ctx context.Context, tenantID, contactID string) error
}

type contactService struct {
	contactsRepo  repository.ContactsRepository
	companiesRepo repository.CompaniesRepository
	notifier      Notifier
	logger        *zap.Logger
}

// NewContactService creates a ContactService instance.
func NewContactService(
	contactsRepo repository.ContactsRepository,
	companiesRepo repository.CompaniesRepository,
	notifier Notifier,
	logger *zap.Logger,
) ContactService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &contactService{
		contactsRepo:  contactsRepo,
		companiesRepo: companiesRepo,
		notifier:      notifier,
		logger:        logger,
	}
}

// ============================================
// Request/Response DTOs
// ============================================

// ListContactsRequest contact list query. Offset/limit come from the cursor
// layer already clamped.
type ListContactsRequest struct {
	TenantID string
	Filters  repository.ContactFilters
	Offset   int
	Limit    int
}

// ListContactsResponse ordered page plus total match count.
type ListContactsResponse struct {
	Items []*ContactDTO
	Total int
}

// ContactPatch is the write payload for both POST (upsert) and PATCH. Only
// fields present in the request body are applied; explicit nulls clear.
type ContactPatch struct {
	Name        Opt[string]  `json:"name"`
	Email       Opt[string]  `json:"email"`
	Phone       Opt[string]  `json:"phone"`
	Role        Opt[string]  `json:"role"`
	CompanyID   Opt[string]  `json:"company_id"`
	CompanyName Opt[string]  `json:"company_name"`
	Status      Opt[string]  `json:"status"`
	Stage       Opt[string]  `json:"stage"`
	Source      Opt[string]  `json:"source"`
	Notes       Opt[string]  `json:"notes"`
	BirthDate   Opt[string]  `json:"birth_date"`
	LastInteractionAt Opt[string]  `json:"last_interaction_at"`
	LastPurchaseDate  Opt[string]  `json:"last_purchase_date"`
	TotalValue        Opt[float64] `json:"total_value"`
}

// UpsertContactResponse resulting record plus the action taken.
type UpsertContactResponse struct {
	Contact *ContactDTO
	Action  string // "created" | "updated"
}

// ContactDTO API representation of a contact. Dates are emitted as
// YYYY-MM-DD, timestamps as RFC 3339 UTC.
type ContactDTO struct {
	ContactID   string  `json:"contact_id"`
	Name        string  `json:"name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Role        *string `json:"role"`
	CompanyID   *string `json:"company_id"`
	CompanyName *string `json:"company_name"`
	Status      string  `json:"status"`
	Stage       *string `json:"stage"`
	Source      *string `json:"source"`
	Notes       *string `json:"notes"`
	BirthDate         *string `json:"birth_date"`
	LastInteractionAt *string `json:"last_interaction_at"`
	LastPurchaseDate  *string `json:"last_purchase_date"`
	TotalValue        float64 `json:"total_value"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

// ============================================
// Operations
// ============================================

func (s *contactService) ListContacts(ctx context.Context, req ListContactsRequest) (*ListContactsResponse, error) {
	contacts, total, err := s.contactsRepo.ListContacts(ctx, req.TenantID, req.Filters, req.Offset, req.Limit)
	if err != nil {
		s.logger.Error("Failed to list contacts", zap.String("tenant_id", req.TenantID), zap.Error(err))
		return nil, err
	}

	items := make([]*ContactDTO, 0, len(contacts))
	for _, c := range contacts {
		items = append(items, contactToDTO(c))
	}
	return &ListContactsResponse{Items: items, Total: total}, nil
}

func (s *contactService) GetContact(ctx context.Context, tenantID, contactID string) (*ContactDTO, error) {
	contact, err := s.contactsRepo.GetContact(ctx, tenantID, contactID)
	if err != nil {
		return nil, err
	}
	return contactToDTO(contact), nil
}

func (s *contactService) UpsertContact(ctx context.Context, tenantID string, patch ContactPatch) (*UpsertContactResponse, error) {
	// Identity keys are normalized first; the dedup lookup and the stored
	// values must agree on the canonical form.
	var email, phone *string
	if patch.Email.Present() {
		email = normalize.Email(patch.Email.Value)
	}
	if patch.Phone.Present() {
		phone = normalize.Phone(patch.Phone.Value)
	}
	if email == nil && phone == nil {
		return nil, NewValidationError("contact", "email or phone is required")
	}

	existing, err := s.contactsRepo.FindByIdentity(ctx, tenantID, email, phone)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("Dedup lookup failed", zap.String("tenant_id", tenantID), zap.Error(err))
		return nil, err
	}

	if existing == nil {
		contact := &domain.Contact{Status: "active"}
		if err := applyPatch(contact, patch); err != nil {
			return nil, err
		}
		if contact.Name == "" {
			return nil, NewValidationError("name", "is required")
		}
		if err := s.applyCompany(ctx, tenantID, contact, patch); err != nil {
			return nil, err
		}

		contactID, err := s.contactsRepo.CreateContact(ctx, tenantID, contact)
		if err != nil {
			s.logger.Error("Failed to create contact", zap.String("tenant_id", tenantID), zap.Error(err))
			return nil, err
		}
		created, err := s.contactsRepo.GetContact(ctx, tenantID, contactID)
		if err != nil {
			return nil, err
		}

		dto := contactToDTO(created)
		s.notifier.Notify(ctx, "contact.created", dto)
		return &UpsertContactResponse{Contact: dto, Action: ActionCreated}, nil
	}

	updated := *existing
	if err := applyPatch(&updated, patch); err != nil {
		return nil, err
	}
	if updated.Name == "" {
		return nil, NewValidationError("name", "is required")
	}
	if err := s.applyCompany(ctx, tenantID, &updated, patch); err != nil {
		return nil, err
	}

	if err := s.contactsRepo.UpdateContact(ctx, tenantID, existing.ContactID, &updated); err != nil {
		s.logger.Error("Failed to update contact",
			zap.String("tenant_id", tenantID),
			zap.String("contact_id", existing.ContactID),
			zap.Error(err),
		)
		return nil, err
	}
	stored, err := s.contactsRepo.GetContact(ctx, tenantID, existing.ContactID)
	if err != nil {
		return nil, err
	}

	dto := contactToDTO(stored)
	s.notifier.Notify(ctx, "contact.updated", dto)
	return &UpsertContactResponse{Contact: dto, Action: ActionUpdated}, nil
}

func (s *contactService) PatchContact(ctx context.Context, tenantID, contactID string, patch ContactPatch) (*ContactDTO, error) {
	existing, err := s.contactsRepo.GetContact(ctx, tenantID, contactID)
	if err != nil {
		return nil, err
	}

	updated := *existing
	if err := applyPatch(&updated, patch); err != nil {
		return nil, err
	}
	if updated.Name == "" {
		return nil, NewValidationError("name", "is required")
	}
	if err := s.applyCompany(ctx, tenantID, &updated, patch); err != nil {
		return nil, err
	}

	if err := s.contactsRepo.UpdateContact(ctx, tenantID, contactID, &updated); err != nil {
		s.logger.Error("Failed to patch contact",
			zap.String("tenant_id", tenantID),
			zap.String("contact_id", contactID),
			zap.Error(err),
		)
		return nil, err
	}
	stored, err := s.contactsRepo.GetContact(ctx, tenantID, contactID)
	if err != nil {
		return nil, err
	}

	dto := contactToDTO(stored)
	s.notifier.Notify(ctx, "contact.updated", dto)
	return dto, nil
}

func (s *contactService) DeleteContact(ctx context.Context, tenantID, contactID string) error {
	if err := s.contactsRepo.SoftDeleteContact(ctx, tenantID, contactID); err != nil {
		return err
	}
	s.notifier.Notify(ctx, "contact.deleted", map[string]string{"contact_id": contactID})
	return nil
}

// ============================================
// Patch application
// ============================================

// applyPatch normalizes every present scalar field and writes it into
// contact. It never touches the store: company resolution (applyCompany)
// runs separately, after validation, so a rejected payload leaves no rows
// behind.
func applyPatch(contact *domain.Contact, patch ContactPatch) error {
	if patch.Name.Set {
		name := ""
		if patch.Name.Present() {
			if n := normalize.Text(patch.Name.Value); n != nil {
				name = *n
			}
		}
		contact.Name = name
	}
	if patch.Email.Set {
		contact.Email = optString(patch.Email, normalize.Email)
	}
	if patch.Phone.Set {
		contact.Phone = optString(patch.Phone, normalize.Phone)
	}
	if patch.Role.Set {
		contact.Role = optString(patch.Role, normalize.Text)
	}
	if patch.Status.Present() {
		if st := normalize.Text(patch.Status.Value); st != nil {
			contact.Status = *st
		}
	}
	if patch.Stage.Set {
		contact.Stage = optString(patch.Stage, normalize.Text)
	}
	if patch.Source.Set {
		contact.Source = optString(patch.Source, normalize.Text)
	}
	if patch.Notes.Set {
		contact.Notes = optString(patch.Notes, normalize.Text)
	}

	if patch.BirthDate.Set {
		t, err := patchDate(patch.BirthDate, "birth_date")
		if err != nil {
			return err
		}
		contact.BirthDate = t
	}
	if patch.LastPurchaseDate.Set {
		t, err := patchDate(patch.LastPurchaseDate, "last_purchase_date")
		if err != nil {
			return err
		}
		contact.LastPurchaseDate = t
	}
	if patch.LastInteractionAt.Set {
		t, err := patchTimestamp(patch.LastInteractionAt, "last_interaction_at")
		if err != nil {
			return err
		}
		contact.LastInteractionAt = t
	}

	if patch.TotalValue.Set {
		if patch.TotalValue.Null {
			contact.TotalValue = 0
		} else {
			contact.TotalValue = patch.TotalValue.Value
		}
	}

	return nil
}

// applyCompany resolves the company reference from either a direct id or a
// free-text name. A well-formed id wins when both appear; a malformed id
// normalizes to absent and falls through to the name. When neither yields a
// usable reference, both columns clear. Name resolution may create the
// company.
func (s *contactService) applyCompany(ctx context.Context, tenantID string, contact *domain.Contact, patch ContactPatch) error {
	if !patch.CompanyID.Set && !patch.CompanyName.Set {
		return nil
	}

	if patch.CompanyID.Present() {
		if companyID := normalize.UUID(patch.CompanyID.Value); companyID != nil {
			company, err := s.companiesRepo.GetCompany(ctx, tenantID, *companyID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return NewValidationError("company_id", "unknown company")
				}
				return err
			}
			contact.CompanyID = sql.NullString{String: company.CompanyID, Valid: true}
			contact.CompanyName = sql.NullString{String: company.CompanyName, Valid: true}
			return nil
		}
	}

	var name *string
	if patch.CompanyName.Present() {
		name = normalize.Text(patch.CompanyName.Value)
	}
	if name == nil {
		contact.CompanyID = sql.NullString{}
		contact.CompanyName = sql.NullString{}
		return nil
	}
	companyID, err := s.companiesRepo.GetOrCreateByName(ctx, tenantID, *name)
	if err != nil {
		s.logger.Error("Failed to resolve company",
			zap.String("tenant_id", tenantID),
			zap.String("company_name", *name),
			zap.Error(err),
		)
		return fmt.Errorf("failed to resolve company: %w", err)
	}
	contact.CompanyID = sql.NullString{String: companyID, Valid: true}
	contact.CompanyName = sql.NullString{String: *name, Valid: true}
	return nil
}

func optString(o Opt[string], norm func(string) *string) sql.NullString {
	if o.Null {
		return sql.NullString{}
	}
	v := norm(o.Value)
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func patchDate(o Opt[string], field string) (*time.Time, error) {
	if o.Null {
		return nil, nil
	}
	t, ok := normalize.Date(o.Value)
	if !ok {
		return nil, NewValidationError(field, "invalid date")
	}
	return t, nil
}

func patchTimestamp(o Opt[string], field string) (*time.Time, error) {
	if o.Null {
		return nil, nil
	}
	t, ok := normalize.Timestamp(o.Value)
	if !ok {
		return nil, NewValidationError(field, "invalid timestamp")
	}
	return t, nil
}

// ============================================
// DTO assembly
// ============================================

func contactToDTO(c *domain.Contact) *ContactDTO {
	dto := &ContactDTO{
		ContactID:   c.ContactID,
		Name:        c.Name,
		Email:       nullStringPtr(c.Email),
		Phone:       nullStringPtr(c.Phone),
		Role:        nullStringPtr(c.Role),
		CompanyID:   nullStringPtr(c.CompanyID),
		CompanyName: nullStringPtr(c.CompanyName),
		Status:      c.Status,
		Stage:       nullStringPtr(c.Stage),
		Source:      nullStringPtr(c.Source),
		Notes:       nullStringPtr(c.Notes),
		TotalValue:  c.TotalValue,
		CreatedAt:   normalize.FormatTimestamp(c.CreatedAt),
		UpdatedAt:   normalize.FormatTimestamp(c.UpdatedAt),
	}
	if c.BirthDate != nil {
		v := normalize.FormatDate(*c.BirthDate)
		dto.BirthDate = &v
	}
	if c.LastInteractionAt != nil {
		v := normalize.FormatTimestamp(*c.LastInteractionAt)
		dto.LastInteractionAt = &v
	}
	if c.LastPurchaseDate != nil {
		v := normalize.FormatDate(*c.LastPurchaseDate)
		dto.LastPurchaseDate = &v
	}
	return dto
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
