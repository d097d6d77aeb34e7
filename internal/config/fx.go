package config

import "go.uber.org/fx"

// InvoicingModule provides the hot-reloadable invoicing policy holder.
var InvoicingModule = fx.Provide(NewInvoicingConfigHolder)
