package main

import (
	"github.com/FresyMetal/isr-crm/internal/clock"
	"github.com/FresyMetal/isr-crm/internal/config"
	"github.com/FresyMetal/isr-crm/internal/migration"
	"github.com/FresyMetal/isr-crm/internal/observability"
	"github.com/FresyMetal/isr-crm/internal/scheduler"
	"github.com/FresyMetal/isr-crm/internal/server"
	"github.com/FresyMetal/isr-crm/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// HTTP surface and the domain modules it carries
		server.Module,

		// Recurring billing jobs
		scheduler.Module,
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
