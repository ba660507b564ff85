package main

import (
	"context"

	"taskboard/cmd/server/internal/commands"
	_ "taskboard/docs"

	"github.com/alecthomas/kong"
)

var (
	version = "dev"
	cli     struct {
		Debug   bool                `help:"Enable debug logging."`
		Version kong.VersionFlag    `help:"Print the version and exit."`
		Serve   commands.ServeCmd   `cmd:"" default:"1" help:"Start the API server."`
		Migrate commands.MigrateCmd `cmd:"" help:"Apply or revert database migrations."`
	}
)

// @title           Taskboard API
// @version         1.0
// @description     Real-time shared project scheduling: projects joined by share code, tasks on a Kanban board and a Gantt timeline, live updates over server-sent events.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token or a Firebase ID token.

// @schemes http
func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("taskboard"),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
