package service

import (
	"context"
	"testing"

	"clientdesk-data/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestContactService() (ContactService, *repository.MemoryContactsRepository, *repository.MemoryCompaniesRepository) {
	contactsRepo := repository.NewMemoryContactsRepository()
	companiesRepo := repository.NewMemoryCompaniesRepository()
	svc := NewContactService(contactsRepo, companiesRepo, nil, zap.NewNop())
	return svc, contactsRepo, companiesRepo
}

func strOpt(v string) Opt[string] {
	return Opt[string]{Set: true, Value: v}
}

func nullOpt() Opt[string] {
	return Opt[string]{Set: true, Null: true}
}

const testTenant = "00000000-0000-0000-0000-000000000111"

func TestUpsertContact_CreateThenUpdateSameID(t *testing.T) {
	svc, _, _ := newTestContactService()
	ctx := context.Background()

	first, err := svc.UpsertContact(ctx, testTenant, ContactPatch{
		Name:  strOpt("Ana"),
		Email: strOpt("ANA@EX.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, ActionCreated, first.Action)
	require.NotNil(t, first.Contact.Email)
	assert.Equal(t, "ana@ex.com", *first.Contact.Email)

	second, err := svc.UpsertContact(ctx, testTenant, ContactPatch{
		Name:  strOpt("Ana Silva"),
		Email: strOpt("ana@ex.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, ActionUpdated, second.Action)
	assert.Equal(t, first.Contact.ContactID, second.Contact.ContactID)
	assert.Equal(t, "Ana Silva", second.Contact.Name)
}

func TestUpsertContact_RequiresEmailOrPhone(t *testing.T) {
	svc, contactsRepo, _ := newTestContactService()
	ctx := context.Background()

	_, err := svc.UpsertContact(ctx, testTenant, ContactPatch{Name: strOpt("No Identity")})
	require.Error(t, err)
	verr, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "contact", verr.Field)

	// Rejected before any store write.
	items, total, err := contactsRepo.ListContacts(ctx, testTenant, repository.ContactFilters{}, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
}

func TestUpsertContact_RequiresNameOnCreate(t *testing.T) {
	svc, _, _ := newTestContactService()

	_, err := svc.UpsertContact(context.Background(), testTenant, ContactPatch{
		Email: strOpt("noname@ex.com"),
	})
	require.Error(t, err)
	verr, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "name", verr.Field)
}

func TestUpsertContact_InvalidDateNamesField(t *testing.T) {
	svc, _, _ := newTestContactService()

	_, err := svc.UpsertContact(context.Background(), testTenant, ContactPatch{
		Name:      strOpt("Ana"),
		Email:     strOpt("ana@ex.com"),
		BirthDate: strOpt("not-a-date"),
	})
	require.Error(t, err)
	verr, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "birth_date", verr.Field)

	_, err = svc.UpsertContact(context.Background(), testTenant, ContactPatch{
		Name:              strOpt("Ana"),
		Email:             strOpt("ana@ex.com"),
		LastInteractionAt: strOpt("not-a-timestamp"),
	})
	require.Error(t, err)
	verr, ok = AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "last_interaction_at", verr.Field)
}

func TestUpsertContact_PhoneCanonicalizedOnWriteAndLookup(t *testing.T) {
	svc, _, _ := newTestContactService()
	ctx := context.Background()

	first, err := svc.UpsertContact(ctx, testTenant, ContactPatch{
		Name:  strOpt("Bo"),
		Phone: strOpt("+1 (555) 010-2030"),
	})
	require.NoError(t, err)
	require.NotNil(t, first.Contact.Phone)
	assert.Equal(t, "+15550102030", *first.Contact.Phone)

	// Different formatting, same canonical number: update, not create.
	second, err := svc.UpsertContact(ctx, testTenant, ContactPatch{
		Name:  strOpt("Bo"),
		Phone: strOpt("+1 555.010.2030"),
	})
	require.NoError(t, err)
	assert.Equal(t, ActionUpdated, second.Action)
	assert.Equal(t, first.Contact.ContactID, second.Contact.ContactID)
}

func TestUpsertContact_NoCompanyPersistedWhenNameMissing(t *testing.T) {
	svc, contactsRepo, companiesRepo := newTestContactService()
	ctx := context.Background()

	_, err := svc.UpsertContact(ctx, testTenant, ContactPatch{
		Email:       strOpt("ana@ex.com"),
		CompanyName: strOpt("Acme Corp"),
	})
	require.Error(t, err)
	verr, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "name", verr.Field)

	// The rejected payload must leave no rows behind, company included.
	_, total, err := companiesRepo.ListCompanies(ctx, testTenant, "", 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	_, total, err = contactsRepo.ListContacts(ctx, testTenant, repository.ContactFilters{}, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestUpsertContact_MalformedCompanyIDFallsBackToName(t *testing.T) {
	svc, _, companiesRepo := newTestContactService()
	ctx := context.Background()

	// A malformed id is treated as absent; the sibling name still resolves.
	resp, err := svc.UpsertContact(ctx, testTenant, ContactPatch{
		Name:        strOpt("Ana"),
		Email:       strOpt("ana@ex.com"),
		CompanyID:   strOpt("not-a-uuid"),
		CompanyName: strOpt("Acme Corp"),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Contact.CompanyID)
	require.NotNil(t, resp.Contact.CompanyName)
	assert.Equal(t, "Acme Corp", *resp.Contact.CompanyName)

	companyID, err := companiesRepo.GetOrCreateByName(ctx, testTenant, "Acme Corp")
	require.NoError(t, err)
	assert.Equal(t, companyID, *resp.Contact.CompanyID)

	// With no name to fall back to, the reference stores as null.
	solo, err := svc.UpsertContact(ctx, testTenant, ContactPatch{
		Name:      strOpt("Ben"),
		Email:     strOpt("ben@ex.com"),
		CompanyID: strOpt("42"),
	})
	require.NoError(t, err)
	assert.Nil(t, solo.Contact.CompanyID)
	assert.Nil(t, solo.Contact.CompanyName)
}

func TestUpsertContact_CompanyNameResolution(t *testing.T) {
	svc, _, _ := newTestContactService()
	ctx := context.Background()

	first, err := svc.UpsertContact(ctx, testTenant, ContactPatch{
		Name:        strOpt("Ana"),
		Email:       strOpt("ana@ex.com"),
		CompanyName: strOpt("Acme Corp"),
	})
	require.NoError(t, err)
	require.NotNil(t, first.Contact.CompanyID)

	// Case-insensitive: same company id, no duplicate row.
	second, err := svc.UpsertContact(ctx, testTenant, ContactPatch{
		Name:        strOpt("Ben"),
		Email:       strOpt("ben@ex.com"),
		CompanyName: strOpt("ACME CORP"),
	})
	require.NoError(t, err)
	require.NotNil(t, second.Contact.CompanyID)
	assert.Equal(t, *first.Contact.CompanyID, *second.Contact.CompanyID)
}

func TestUpsertContact_DedupPrefersOldestContact(t *testing.T) {
	svc, _, _ := newTestContactService()
	ctx := context.Background()

	byEmail, err := svc.UpsertContact(ctx, testTenant, ContactPatch{
		Name:  strOpt("First"),
		Email: strOpt("both@ex.com"),
	})
	require.NoError(t, err)

	byPhone, err := svc.UpsertContact(ctx, testTenant, ContactPatch{
		Name:  strOpt("Second"),
		Phone: strOpt("+15550000001"),
	})
	require.NoError(t, err)
	require.NotEqual(t, byEmail.Contact.ContactID, byPhone.Contact.ContactID)

	// Email matches the first contact, phone the second. The earlier
	// created row wins.
	resp, err := svc.UpsertContact(ctx, testTenant, ContactPatch{
		Name:  strOpt("Merged"),
		Email: strOpt("both@ex.com"),
		Phone: strOpt("+15550000001"),
	})
	require.NoError(t, err)
	assert.Equal(t, ActionUpdated, resp.Action)
	assert.Equal(t, byEmail.Contact.ContactID, resp.Contact.ContactID)
}

func TestPatchContact_PresenceSemantics(t *testing.T) {
	svc, _, _ := newTestContactService()
	ctx := context.Background()

	created, err := svc.UpsertContact(ctx, testTenant, ContactPatch{
		Name:  strOpt("Ana"),
		Email: strOpt("ana@ex.com"),
		Notes: strOpt("keep in touch"),
		Stage: strOpt("lead"),
	})
	require.NoError(t, err)
	id := created.Contact.ContactID

	// Absent fields stay untouched; explicit null clears.
	patched, err := svc.PatchContact(ctx, testTenant, id, ContactPatch{
		Notes: nullOpt(),
	})
	require.NoError(t, err)
	assert.Nil(t, patched.Notes)
	require.NotNil(t, patched.Stage)
	assert.Equal(t, "lead", *patched.Stage)
	require.NotNil(t, patched.Email)
	assert.Equal(t, "ana@ex.com", *patched.Email)

	// Each date field's invalid value aborts naming that field.
	_, err = svc.PatchContact(ctx, testTenant, id, ContactPatch{
		LastPurchaseDate: strOpt("never"),
	})
	require.Error(t, err)
	verr, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "last_purchase_date", verr.Field)
}

func TestPatchContact_UnknownID(t *testing.T) {
	svc, _, _ := newTestContactService()

	_, err := svc.PatchContact(context.Background(), testTenant,
		"00000000-0000-0000-0000-00000000dead", ContactPatch{Name: strOpt("X")})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteContact_ExcludedFromReadsAndDedup(t *testing.T) {
	svc, _, _ := newTestContactService()
	ctx := context.Background()

	created, err := svc.UpsertContact(ctx, testTenant, ContactPatch{
		Name:  strOpt("Ana"),
		Email: strOpt("ana@ex.com"),
	})
	require.NoError(t, err)
	id := created.Contact.ContactID

	require.NoError(t, svc.DeleteContact(ctx, testTenant, id))

	_, err = svc.GetContact(ctx, testTenant, id)
	require.ErrorIs(t, err, repository.ErrNotFound)

	// Deleted rows never match the dedup predicate.
	again, err := svc.UpsertContact(ctx, testTenant, ContactPatch{
		Name:  strOpt("Ana"),
		Email: strOpt("ana@ex.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, ActionCreated, again.Action)
	assert.NotEqual(t, id, again.Contact.ContactID)
}

func TestListContacts_TenantIsolation(t *testing.T) {
	svc, _, _ := newTestContactService()
	ctx := context.Background()

	_, err := svc.UpsertContact(ctx, testTenant, ContactPatch{
		Name:  strOpt("Ana"),
		Email: strOpt("ana@ex.com"),
	})
	require.NoError(t, err)

	other, err := svc.ListContacts(ctx, ListContactsRequest{
		TenantID: "00000000-0000-0000-0000-000000000222",
		Limit:    10,
	})
	require.NoError(t, err)
	assert.Zero(t, other.Total)
}
