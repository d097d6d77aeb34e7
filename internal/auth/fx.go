package auth

import (
	"github.com/billablehq/billable/internal/auth/service"
	"github.com/billablehq/billable/internal/auth/session"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(service.NewService),
	fx.Provide(session.NewManager),
)
