package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/diwise/ro-crate/internal/pkg/application/cratestore"
	"github.com/diwise/ro-crate/internal/pkg/infrastructure/router"
	"github.com/diwise/ro-crate/internal/pkg/presentation/api/crates"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/spf13/cobra"
)

func serveCmd(flags FlagMap) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the configured crates over a read only HTTP api",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.GetFromContext(ctx)

			handler, err := initialize(ctx, flags)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			srv := &http.Server{
				Addr:              ":" + flags[servicePort],
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("starting to listen for connections", "port", flags[servicePort])
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case <-ctx.Done():
				log.Info("shutting down")
			case err = <-errCh:
				return err
			}

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()

			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().Var(flagValue(flags, servicePort), "port", "port to listen for connections on")
	cmd.Flags().Var(flagValue(flags, configPath), "config", "yaml file listing the crates to serve")
	cmd.Flags().Var(flagValue(flags, opaPath), "policies", "rego file with a rocrate.authz allow rule (defaults to allowing GET requests)")

	return cmd
}

func initialize(ctx context.Context, flags FlagMap) (http.Handler, error) {
	cfgFile, err := os.Open(flags[configPath])
	if err != nil {
		return nil, fmt.Errorf("failed to open configuration file: %w", err)
	}
	defer cfgFile.Close()

	cfg, err := cratestore.LoadConfiguration(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := cratestore.New(ctx, *cfg)
	if err != nil {
		return nil, err
	}

	var policies io.Reader = bytes.NewReader(defaultAuthzPolicies)
	if flags[opaPath] != "" {
		policyFile, err := os.Open(flags[opaPath])
		if err != nil {
			return nil, fmt.Errorf("failed to open authz policies: %w", err)
		}
		defer policyFile.Close()
		policies = policyFile
	}

	r := router.New(serviceName)

	if err = crates.RegisterHandlers(ctx, r, policies, store); err != nil {
		return nil, err
	}

	return r, nil
}
