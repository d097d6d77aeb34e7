package ticket

import (
	"github.com/billablehq/billable/internal/ticket/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ticket.service",
	fx.Provide(service.NewService),
)
