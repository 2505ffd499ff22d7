package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/idealab/internal/auth"
	"github.com/lehigh-university-libraries/idealab/internal/handlers"
	"github.com/lehigh-university-libraries/idealab/internal/storage"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start web server for the design studio",
		Long: `Starts the Idealab web interface on the specified port.

Sign in, upload a product photo and use the description, sketch and chat
panels. GEMINI_API_KEY must be set; the server will not start without it.`,
		Example: `  # Start server on default port 8888
  idealab serve

  # Start server on custom port
  idealab serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			client, err := newStudioClient(cmd.Context(), cfg)
			if err != nil {
				slog.Error("Unable to start studio", "err", err)
				return err
			}

			gate := auth.NewGate(storage.New(), client)
			go gate.RunSweeper(cmd.Context(), 10*time.Minute)
			handler := handlers.New(gate, handlers.Options{
				GoogleClientID: cfg.GoogleClientID,
				SecureCookies:  cfg.SecureCookies,
			})

			addr := ":" + cfg.Port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Idealab interface available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")

	return cmd
}
