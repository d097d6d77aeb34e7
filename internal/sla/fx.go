package sla

import (
	"go.uber.org/fx"

	"github.com/billablehq/billable/internal/sla/service"
)

var Module = fx.Module("sla.service",
	fx.Provide(service.NewService),
)
