package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/SAP-F-2025/ielts-trainer/internal/handlers"
	"github.com/SAP-F-2025/ielts-trainer/internal/repositories/postgres"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		migrate, _ := cmd.Flags().GetBool("migrate")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if migrate {
			if err := postgres.Migrate(ctx, a.db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}

		deps, err := a.newServerDeps(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err := deps.Close(); err != nil {
				a.logger.LogError(err, "Failed to close server dependencies")
			}
		}()

		if a.cfg.IsProduction() {
			gin.SetMode(gin.ReleaseMode)
		}
		router := gin.New()
		router.Use(gin.Recovery())

		manager := handlers.NewHandlerManager(handlers.Services{
			Practice:   deps.practice,
			Collection: deps.collect,
			Dashboard:  deps.dashboard,
			Auth:       deps.provider,
		}, handlers.RouterConfig{
			Auth: handlers.AuthHandlerConfig{
				PublicBaseURL: a.cfg.PublicBaseURL,
				SecureCookies: a.cfg.SecureCookies,
				SessionTTL:    a.cfg.SessionTTL,
			},
			CORSOrigins: a.cfg.CORSOrigins,
		}, a.validator, a.logger)
		if err := manager.SetupRoutes(router); err != nil {
			return fmt.Errorf("setup routes: %w", err)
		}

		srv := &http.Server{
			Addr:              ":" + a.cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			a.logger.Info("Server starting", "port", a.cfg.Port, "environment", a.cfg.Environment)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			a.logger.Info("Shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Bool("migrate", false, "run database migrations before starting")
}
