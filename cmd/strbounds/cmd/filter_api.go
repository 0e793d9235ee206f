package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/solatis/strbounds/internal/core/api"
	"github.com/solatis/strbounds/internal/core/auth"
	"github.com/solatis/strbounds/internal/core/catalog"
	"github.com/solatis/strbounds/internal/core/config"
	"github.com/solatis/strbounds/internal/core/server"
	"github.com/solatis/strbounds/internal/logging"
)

func newFilterAPICmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter-api",
		Short: "Start gRPC filter API service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilterAPI(cmd, opts)
		},
	}

	cmd.Flags().String("host", "0.0.0.0", "gRPC server host")
	cmd.Flags().Int("port", 50061, "gRPC server port")
	return cmd
}

func runFilterAPI(cmd *cobra.Command, opts *options) error {
	ctx := cmd.Context()
	logger := logging.GetLogger("filter_api")

	cfg := opts.cfg.FilterAPI
	if cmd.Flags().Changed("host") {
		cfg.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}

	secrets, err := config.HMACSecrets()
	if err != nil {
		return fmt.Errorf("failed to load HMAC secrets: %w", err)
	}
	if len(secrets) == 0 {
		return fmt.Errorf("no HMAC secrets configured (set SB_HMAC_SECRET environment variable)")
	}

	queries, closeDB, err := opts.openQueries(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	authenticator := auth.NewAuthenticator(secrets, queries)

	service, err := api.NewService(catalog.New(queries, cfg.CompileOptions()), &cfg)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	grpcServer, err := server.NewGRPCServer(&cfg, service, authenticator)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info().
		Str("version", Version).
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Msg("Starting strbounds filter API")
	errChan := make(chan error, 1)
	go func() {
		errChan <- grpcServer.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		logger.Info().Msg("Shutting down gracefully...")
		return grpcServer.Shutdown(context.Background())
	}
}
