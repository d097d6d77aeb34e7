package notification

import (
	"github.com/billablehq/billable/internal/notification/service"
	"github.com/billablehq/billable/internal/providers/email"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	email.Module,
	fx.Provide(service.NewService),
)
