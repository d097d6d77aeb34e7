// Package seed bootstraps the default tenant and admin profile so a fresh
// install is immediately usable.
package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	profiledomain "github.com/billablehq/billable/internal/profile/domain"
	tenantdomain "github.com/billablehq/billable/internal/tenant/domain"
)

const (
	defaultTenantName    = "Main"
	defaultAdminEmail    = "admin@billable.local"
	defaultAdminPassword = "admin"
	defaultAdminDisplay  = "Billable Admin"
)

// EnsureDefaultTenant creates the default tenant if it does not exist. A
// non-zero id pins the tenant to a fixed id so DEFAULT_TENANT_ID stays stable
// across restarts.
func EnsureDefaultTenant(db *gorm.DB, id int64) (tenantdomain.Tenant, error) {
	if db == nil {
		return tenantdomain.Tenant{}, errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return tenantdomain.Tenant{}, err
	}

	ctx := context.Background()
	var tenant tenantdomain.Tenant
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tenant, err = ensureTenantTx(ctx, tx, node, id)
		return err
	})
	return tenant, err
}

// EnsureDefaultTenantAndAdmin seeds the default tenant and its admin profile.
func EnsureDefaultTenantAndAdmin(db *gorm.DB, id int64) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tenant, err := ensureTenantTx(ctx, tx, node, id)
		if err != nil {
			return err
		}
		return ensureAdminTx(ctx, tx, node, tenant.ID)
	})
}

func ensureTenantTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, id int64) (tenantdomain.Tenant, error) {
	var tenant tenantdomain.Tenant
	stmt := tx.WithContext(ctx)
	if id != 0 {
		stmt = stmt.Where("id = ?", id)
	} else {
		stmt = stmt.Where("name = ?", defaultTenantName)
	}
	err := stmt.First(&tenant).Error
	if err == nil {
		return tenant, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return tenantdomain.Tenant{}, err
	}

	tenant = tenantdomain.Tenant{
		ID:        node.Generate(),
		Name:      defaultTenantName,
		CreatedAt: time.Now().UTC(),
	}
	if id != 0 {
		tenant.ID = snowflake.ID(id)
	}
	if err := tx.WithContext(ctx).Create(&tenant).Error; err != nil {
		return tenantdomain.Tenant{}, err
	}
	return tenant, nil
}

func ensureAdminTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, tenantID snowflake.ID) error {
	var profile profiledomain.Profile
	err := tx.WithContext(ctx).
		Where("tenant_id = ? AND email = ?", tenantID, defaultAdminEmail).
		First(&profile).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(defaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	profile = profiledomain.Profile{
		ID:           node.Generate(),
		TenantID:     tenantID,
		Email:        strings.ToLower(defaultAdminEmail),
		DisplayName:  defaultAdminDisplay,
		PasswordHash: string(hash),
		Role:         profiledomain.RoleOwner,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return tx.WithContext(ctx).Create(&profile).Error
}
