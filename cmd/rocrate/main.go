package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/spf13/cobra"
)

const serviceName string = "ro-crate"

func main() {
	serviceVersion := buildinfo.SourceVersion()

	ctx, log, cleanup := o11y.Init(context.Background(), serviceName, serviceVersion, "json")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)

	flags := defaultFlags(ctx)

	rootCmd := &cobra.Command{
		Use:           "rocrate",
		Short:         "Read, check and serve RO-Crate research object packages",
		Version:       serviceVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		inspectCmd(),
		validateCmd(flags),
		expandCmd(),
		enrichCmd(flags),
		serveCmd(flags),
	)

	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		log.Error("command failed", "err", err.Error())
		cleanup()
		os.Exit(1)
	}

	cleanup()
}
