package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/susu3304/pokerclub/internal/commands"
)

type Options struct {
	// ReminderChannel and ReminderInterval enable the outstanding balance
	// reminder when both are set.
	ReminderChannel  string
	ReminderInterval time.Duration
	Clock            quartz.Clock
	Logger           zerolog.Logger
}

type Bot struct {
	session  *discordgo.Session
	reports  commands.Reports
	reminder *reminderWorker
	log      zerolog.Logger
}

func New(token string, reports commands.Reports, opts Options) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}

	bot := &Bot{
		session: session,
		reports: reports,
		log:     opts.Logger.With().Str("component", "bot").Logger(),
	}
	if opts.ReminderChannel != "" && opts.ReminderInterval > 0 {
		bot.reminder = newReminderWorker(session, reports, opts.Clock, bot.log, opts.ReminderChannel, opts.ReminderInterval)
	}

	// Register event handlers
	session.AddHandler(bot.onReady)
	session.AddHandler(bot.onGuildCreate)
	session.AddHandler(bot.onInteractionCreate)

	session.Identify.Intents = discordgo.IntentsGuilds

	return bot, nil
}

// Run keeps the bot connected until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	b.log.Info().Msg("Discord bot is running")

	if b.reminder != nil {
		b.reminder.start(ctx)
	}

	<-ctx.Done()
	return b.session.Close()
}
