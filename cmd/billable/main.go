package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/billablehq/billable/internal/config"
	"github.com/billablehq/billable/internal/migration"
	"github.com/billablehq/billable/internal/server"
	"github.com/billablehq/billable/pkg/db"
	"github.com/billablehq/billable/pkg/log"
)

func main() {
	app := fx.New(
		config.Module,
		config.InvoicingModule,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
