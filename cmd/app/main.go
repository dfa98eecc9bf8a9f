// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/CallMeGwei/captive-portal-totp/cmd/app/commands"
	"github.com/CallMeGwei/captive-portal-totp/internal/app"
	"github.com/CallMeGwei/captive-portal-totp/internal/config"
)

const (
	flagRemove    = "remove"
	flagGenSecret = "gen-secret"
	flagBuildZip  = "build-zip"
)

func main() {
	cmd := &cli.Command{
		Name:    commands.ProgramName,
		Usage:   "Installer for TOTP-based captive portal guest access on OPNsense",
		Version: "1.0.0",
		MutuallyExclusiveFlags: []cli.MutuallyExclusiveFlags{
			{
				Flags: [][]cli.Flag{
					{&cli.BoolFlag{Name: flagRemove, Usage: "uninstall and restore voucher auth"}},
					{&cli.BoolFlag{Name: flagGenSecret, Usage: "regenerate the TOTP secret"}},
					{&cli.BoolFlag{Name: flagBuildZip, Usage: "build the portal template archive for manual GUI upload"}},
				},
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}

// run selects the action from the flags; install is the default.
func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", cmd.Args().First())
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer func() {
		if err := container.Shutdown(ctx); err != nil {
			logger.Error("failed to shutdown container", slog.Any("error", err))
		}
	}()

	installerUseCase, err := container.InstallerUseCase()
	if err != nil {
		return err
	}

	writer := commands.DefaultIO().Writer
	switch {
	case cmd.Bool(flagRemove):
		return commands.RunRemove(ctx, installerUseCase, logger, writer)
	case cmd.Bool(flagGenSecret):
		return commands.RunGenerateSecret(ctx, installerUseCase, logger, writer)
	case cmd.Bool(flagBuildZip):
		return commands.RunBuildPackage(ctx, installerUseCase, logger, writer)
	default:
		return commands.RunInstall(ctx, installerUseCase, logger, writer)
	}
}
