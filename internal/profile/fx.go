package profile

import (
	"go.uber.org/fx"

	"github.com/billablehq/billable/internal/profile/service"
)

var Module = fx.Module("profile.service",
	fx.Provide(service.NewService),
)
