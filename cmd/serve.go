package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/auto-qa/internal/assistant"
	"github.com/ziadkadry99/auto-qa/internal/atlassian"
	"github.com/ziadkadry99/auto-qa/internal/generation"
	"github.com/ziadkadry99/auto-qa/internal/knowledge"
	"github.com/ziadkadry99/auto-qa/internal/server"
	"github.com/ziadkadry99/auto-qa/internal/teams"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Starts the autoqa HTTP API: generation endpoints, teams, the knowledge base, the QA assistant and its chat websocket.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		port := a.cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		srv := server.New(server.Config{
			Port:     port,
			AllowAll: a.cfg.Server.AllowAllOrigins,
		}, a.db, a.metrics, a.logger)

		registerAllRoutes(srv, a)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			a.logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "autoqa server v%s starting on port %d\n", Version, port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", a.db.Path())
		fmt.Fprintf(os.Stderr, "  Backend:  %s\n", a.cfg.Provider)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("server stopped", zap.Error(err))
			return err
		}
		return nil
	},
}

// registerAllRoutes mounts every feature package on the server.
func registerAllRoutes(srv *server.Server, a *app) {
	srv.API(func(r chi.Router) {
		teams.RegisterRoutes(r, a.teams)
		knowledge.RegisterRoutes(r, a.knowledge)
		generation.RegisterRoutes(r, a.gen, a.runs)
		atlassian.RegisterRoutes(r, a.jira)
		assistant.RegisterRoutes(r, a.assistant)
	})

	// Chat sockets outlive the request timeout.
	assistant.RegisterSocket(srv.Router(), a.assistant)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "port to listen on (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}
