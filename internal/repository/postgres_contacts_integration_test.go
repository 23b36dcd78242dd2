//go:build integration
// +build integration

package repository

import (
	"context"
	"database/sql"
	"os"
	"strconv"
	"testing"

	"clientdesk-data/internal/config"
	"clientdesk-data/internal/database"
	"clientdesk-data/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestDB(t *testing.T) *sql.DB {
	cfg := &config.DatabaseConfig{
		Host:     getTestEnv("TEST_DB_HOST", "localhost"),
		Port:     getTestEnvInt("TEST_DB_PORT", 5432),
		User:     getTestEnv("TEST_DB_USER", "postgres"),
		Password: getTestEnv("TEST_DB_PASSWORD", "postgres"),
		Database: getTestEnv("TEST_DB_NAME", "clientdesk"),
		SSLMode:  getTestEnv("TEST_DB_SSLMODE", "disable"),
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		t.Skipf("Skipping integration test: cannot connect to database: %v", err)
		return nil
	}
	return db
}

func getTestEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getTestEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func createTestTenant(t *testing.T, db *sql.DB, tenantID, name string) {
	_, err := db.Exec(
		`INSERT INTO tenants (tenant_id, tenant_name, status)
		 VALUES ($1, $2, 'active')
		 ON CONFLICT (tenant_id) DO UPDATE SET tenant_name = EXCLUDED.tenant_name, status = 'active'`,
		tenantID, name,
	)
	require.NoError(t, err)
}

func cleanupContacts(t *testing.T, db *sql.DB, tenantID string) {
	_, err := db.Exec(`DELETE FROM contacts WHERE tenant_id = $1`, tenantID)
	require.NoError(t, err)
}

func TestPostgresContacts_CreateGetFindDelete(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()

	tenantID := "00000000-0000-0000-0000-000000000901"
	createTestTenant(t, db, tenantID, "Contacts IT Tenant")
	cleanupContacts(t, db, tenantID)
	defer cleanupContacts(t, db, tenantID)

	repo := NewPostgresContactsRepository(db)
	ctx := context.Background()

	contactID, err := repo.CreateContact(ctx, tenantID, &domain.Contact{
		Name:   "Ana",
		Email:  sql.NullString{String: "ana@ex.com", Valid: true},
		Status: "active",
	})
	require.NoError(t, err)

	got, err := repo.GetContact(ctx, tenantID, contactID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)
	assert.Equal(t, "ana@ex.com", got.Email.String)

	email := "ana@ex.com"
	found, err := repo.FindByIdentity(ctx, tenantID, &email, nil)
	require.NoError(t, err)
	assert.Equal(t, contactID, found.ContactID)

	require.NoError(t, repo.SoftDeleteContact(ctx, tenantID, contactID))

	_, err = repo.GetContact(ctx, tenantID, contactID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.FindByIdentity(ctx, tenantID, &email, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresContacts_FindByIdentityPrefersOldest(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()

	tenantID := "00000000-0000-0000-0000-000000000902"
	createTestTenant(t, db, tenantID, "Dedup IT Tenant")
	cleanupContacts(t, db, tenantID)
	defer cleanupContacts(t, db, tenantID)

	repo := NewPostgresContactsRepository(db)
	ctx := context.Background()

	firstID, err := repo.CreateContact(ctx, tenantID, &domain.Contact{
		Name:   "First",
		Email:  sql.NullString{String: "both@ex.com", Valid: true},
		Status: "active",
	})
	require.NoError(t, err)
	_, err = repo.CreateContact(ctx, tenantID, &domain.Contact{
		Name:   "Second",
		Phone:  sql.NullString{String: "+15550000001", Valid: true},
		Status: "active",
	})
	require.NoError(t, err)

	email := "both@ex.com"
	phone := "+15550000001"
	found, err := repo.FindByIdentity(ctx, tenantID, &email, &phone)
	require.NoError(t, err)
	assert.Equal(t, firstID, found.ContactID)
}

func TestPostgresContacts_ListPagination(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()

	tenantID := "00000000-0000-0000-0000-000000000903"
	createTestTenant(t, db, tenantID, "List IT Tenant")
	cleanupContacts(t, db, tenantID)
	defer cleanupContacts(t, db, tenantID)

	repo := NewPostgresContactsRepository(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := repo.CreateContact(ctx, tenantID, &domain.Contact{
			Name:   "Contact",
			Email:  sql.NullString{String: "c" + strconv.Itoa(i) + "@ex.com", Valid: true},
			Status: "active",
		})
		require.NoError(t, err)
	}

	seen := map[string]bool{}
	for offset := 0; offset < 5; offset += 2 {
		page, total, err := repo.ListContacts(ctx, tenantID, ContactFilters{}, offset, 2)
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		for _, c := range page {
			assert.False(t, seen[c.ContactID])
			seen[c.ContactID] = true
		}
	}
	assert.Len(t, seen, 5)
}
