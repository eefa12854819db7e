package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/florianilch/seedrbot/internal/app"
	"github.com/florianilch/seedrbot/internal/observability"
)

// Execute runs the root command with the given context and arguments.
func Execute(ctx context.Context, args []string) error {
	cmd := &cli.Command{
		Name:  "seedrbot",
		Usage: "Telegram front-end for Seedr.cc cloud storage",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug|info|warn|error)",
				Value: slog.LevelInfo.String(),
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			generateKeyCommand(),
		},
	}

	return cmd.Run(ctx, args)
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "start the bot",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format (text|json)",
				Value: string(app.DefaultConfigLogFormat),
			},
			&cli.StringFlag{
				Name:  "telegram--token",
				Usage: "Telegram bot API token",
			},
			&cli.BoolFlag{
				Name:  "ops--enabled",
				Usage: "enable the operational probe server",
			},
			&cli.StringFlag{
				Name:  "ops--host",
				Usage: "ops server host",
				Value: app.DefaultConfigOpsHost,
			},
			&cli.IntFlag{
				Name:  "ops--port",
				Usage: "ops server port",
				Value: int(app.DefaultConfigOpsPort),
			},
			&cli.StringFlag{
				Name:  "storage--type",
				Usage: "credential storage backend (file|keyring)",
				Value: string(app.DefaultConfigStorageType),
			},
			&cli.StringFlag{
				Name:  "storage--file",
				Usage: "path to the credential document (file storage)",
			},
			&cli.StringFlag{
				Name:  "storage--encryption-key",
				Usage: "base64 32-byte key for token encryption at rest",
			},
		},
		Action: runAction,
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd.String("config"), cmd, os.Environ)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Set up observability before creating app
	err = observability.Instrument(cfg.LogLevel, string(cfg.LogFormat))
	if err != nil {
		return fmt.Errorf("failed to set up observability layer: %w", err)
	}
	defer func() { _ = observability.Shutdown(context.Background()) }()

	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}

	slog.InfoContext(ctx, "starting")

	if err := application.Start(ctx); err != nil {
		return fmt.Errorf("app failed to start: %w", err)
	}

	slog.InfoContext(ctx, "stopped gracefully")
	return nil
}

func generateKeyCommand() *cli.Command {
	return &cli.Command{
		Name:   "generate-key",
		Usage:  "generate a new token encryption key",
		Action: generateKeyAction,
	}
}

func generateKeyAction(_ context.Context, _ *cli.Command) error {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("generating key: %w", err)
	}

	fmt.Println(base64.StdEncoding.EncodeToString(key))
	return nil
}
