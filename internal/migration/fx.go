package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	authdomain "github.com/billablehq/billable/internal/auth/domain"
	clientdomain "github.com/billablehq/billable/internal/client/domain"
	"github.com/billablehq/billable/internal/config"
	invoicedomain "github.com/billablehq/billable/internal/invoice/domain"
	notificationdomain "github.com/billablehq/billable/internal/notification/domain"
	profiledomain "github.com/billablehq/billable/internal/profile/domain"
	"github.com/billablehq/billable/internal/seed"
	sladomain "github.com/billablehq/billable/internal/sla/domain"
	tenantdomain "github.com/billablehq/billable/internal/tenant/domain"
	ticketdomain "github.com/billablehq/billable/internal/ticket/domain"
	timeentrydomain "github.com/billablehq/billable/internal/timeentry/domain"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if conn.Dialector.Name() == "sqlite" {
			// sqlite is the zero-setup local path; gorm derives the schema
			// from the models directly.
			if err := conn.AutoMigrate(
				&tenantdomain.Tenant{},
				&profiledomain.Profile{},
				&authdomain.Session{},
				&clientdomain.Client{},
				&ticketdomain.Ticket{},
				&timeentrydomain.TimeEntry{},
				&invoicedomain.Invoice{},
				&invoicedomain.LineItem{},
				&sladomain.SLARule{},
				&notificationdomain.NotificationLog{},
			); err != nil {
				return err
			}
		} else {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB, conn.Dialector.Name()); err != nil {
				return err
			}
		}

		return seed.EnsureDefaultTenantAndAdmin(conn, cfg.DefaultTenantID)
	}),
)
