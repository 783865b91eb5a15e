package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/app/routes"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/internal/bootstrap"
	"github.com/shashiranjanraj/storefront/internal/kernel"
	"github.com/shashiranjanraj/storefront/internal/server"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/session"
)

// storefront serve: HTTP + gRPC health, in-process queue workers.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := bootstrap.Boot(ctx)
		if err != nil {
			return err
		}
		defer app.Close(context.Background())

		handlers, err := app.Handlers()
		if err != nil {
			return err
		}
		app.Start(ctx, bootstrap.Workers())

		return server.Run(ctx, server.Config{
			Port:     config.AppPort(),
			GRPCPort: config.GRPCPort(),
		}, kernel.Handler(app.Sessions, handlers), app.Store.Repos.Ping)
	},
}

// storefront route:list: print all registered routes.
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions := session.NewManager(cache.NewMemory(), session.DefaultOptions())
		infos := kernel.NewRouter(sessions, routes.Handlers{}).Routes()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}
