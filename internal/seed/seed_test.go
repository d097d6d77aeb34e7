package seed

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	profiledomain "github.com/billablehq/billable/internal/profile/domain"
	tenantdomain "github.com/billablehq/billable/internal/tenant/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tenantdomain.Tenant{}, &profiledomain.Profile{}))
	return db
}

func TestEnsureDefaultTenantIsIdempotent(t *testing.T) {
	db := newTestDB(t)

	first, err := EnsureDefaultTenant(db, 0)
	require.NoError(t, err)
	assert.NotZero(t, first.ID)

	second, err := EnsureDefaultTenant(db, 0)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&tenantdomain.Tenant{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnsureDefaultTenantPinnedID(t *testing.T) {
	db := newTestDB(t)

	tenant, err := EnsureDefaultTenant(db, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), tenant.ID.Int64())
}

func TestEnsureDefaultTenantAndAdmin(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, EnsureDefaultTenantAndAdmin(db, 0))
	require.NoError(t, EnsureDefaultTenantAndAdmin(db, 0))

	var profiles []profiledomain.Profile
	require.NoError(t, db.Find(&profiles).Error)
	require.Len(t, profiles, 1)
	assert.Equal(t, defaultAdminEmail, profiles[0].Email)
	assert.Equal(t, profiledomain.RoleOwner, profiles[0].Role)
	assert.NotEmpty(t, profiles[0].PasswordHash)
}
