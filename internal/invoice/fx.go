package invoice

import (
	"go.uber.org/fx"

	"github.com/billablehq/billable/internal/invoice/service"
)

var Module = fx.Module("invoice.service",
	fx.Provide(service.NewService),
)
