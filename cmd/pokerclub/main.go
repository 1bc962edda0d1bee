package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/susu3304/pokerclub/internal/api"
	"github.com/susu3304/pokerclub/internal/bot"
	"github.com/susu3304/pokerclub/internal/club"
	"github.com/susu3304/pokerclub/internal/config"
	"github.com/susu3304/pokerclub/internal/db"
)

type Globals struct {
	Debug bool `help:"Enable debug logging with console output"`
}

var CLI struct {
	Globals

	Serve   serveCmd   `cmd:"" default:"withargs" help:"Run the API server, Discord bot and change listener"`
	Migrate migrateCmd `cmd:"" help:"Create or update the database schema and exit"`
}

type serveCmd struct {
	Addr  string `short:"a" help:"Address to bind to (overrides WEB_BIND)"`
	NoBot bool   `help:"Do not start the Discord bot even when DISCORD_TOKEN is set"`
}

type migrateCmd struct{}

func newLogger(g *Globals, cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if g.Debug {
		level = zerolog.DebugLevel
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

func setup(ctx context.Context, g *Globals) (*config.Config, zerolog.Logger, *db.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := newLogger(g, cfg)

	database, err := db.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, logger, nil, err
	}
	if err := database.RunMigrations(ctx, cfg.DefaultBuyIn, cfg.DefaultRebuy); err != nil {
		database.Close()
		return nil, logger, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return cfg, logger, database, nil
}

func (m *migrateCmd) Run(g *Globals) error {
	_, logger, database, err := setup(context.Background(), g)
	if err != nil {
		return err
	}
	defer database.Close()
	logger.Info().Msg("migrations applied")
	return nil
}

func (c *serveCmd) Run(g *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, database, err := setup(ctx, g)
	if err != nil {
		return err
	}
	defer database.Close()
	if c.Addr != "" {
		cfg.WebBind = c.Addr
	}

	hub := club.NewHub()
	svc := club.NewService(database, club.Options{
		RequireDateNames: cfg.RequireDateNames,
		Logger:           logger.With().Str("component", "club").Logger(),
		Hub:              hub,
	})
	users := club.NewDirectory(database, cfg.OwnerDiscordID)
	if cfg.OwnerDiscordID == "" {
		logger.Warn().Msg("OWNER_DISCORD_ID is not set; nobody can grant roles")
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return api.New(cfg, svc, users, logger).Start(groupCtx)
	})
	group.Go(func() error {
		return database.Listen(groupCtx, hub.Notify)
	})
	if cfg.DiscordToken != "" && !c.NoBot {
		discordBot, err := bot.New(cfg.DiscordToken, svc, bot.Options{
			ReminderChannel:  cfg.DiscordReminderChannel,
			ReminderInterval: cfg.ReminderInterval,
			Logger:           logger,
		})
		if err != nil {
			return err
		}
		group.Go(func() error {
			return discordBot.Run(groupCtx)
		})
	} else {
		logger.Info().Msg("Discord bot disabled")
	}

	err = group.Wait()
	logger.Info().Msg("shut down")
	return err
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("pokerclub"),
		kong.Description("Club poker accounting: live games, cashier, rankings and dinner splits."),
	)
	if err := ctx.Run(&CLI.Globals); err != nil {
		fmt.Fprintf(os.Stderr, "pokerclub: %v\n", err)
		os.Exit(1)
	}
}
