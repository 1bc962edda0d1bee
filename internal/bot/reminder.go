package bot

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/susu3304/pokerclub/internal/commands"
)

const autoPostNote = "\n\n_This message is posted automatically._"

// reminderWorker periodically posts outstanding cashier balances to a channel.
type reminderWorker struct {
	session   reminderSession
	reports   commands.Reports
	clock     quartz.Clock
	log       zerolog.Logger
	channelID string
	interval  time.Duration
}

// Minimal session interface for sending channel messages.
type reminderSession interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

func newReminderWorker(session reminderSession, reports commands.Reports, clock quartz.Clock, log zerolog.Logger, channelID string, interval time.Duration) *reminderWorker {
	return &reminderWorker{
		session:   session,
		reports:   reports,
		clock:     clock,
		log:       log,
		channelID: channelID,
		interval:  interval,
	}
}

// start schedules tick every interval until ctx ends.
func (w *reminderWorker) start(ctx context.Context) quartz.Waiter {
	w.log.Info().Dur("interval", w.interval).Str("channel_id", w.channelID).Msg("reminders enabled")
	return w.clock.TickerFunc(ctx, w.interval, func() error {
		w.tick(ctx)
		return nil
	}, "reminder")
}

func (w *reminderWorker) tick(ctx context.Context) {
	report, err := w.reports.Cashier(ctx)
	if err != nil {
		w.log.Warn().Err(err).Msg("reminder: failed to load cashier")
		return
	}
	msg := commands.FormatReminder(report)
	if msg == "" {
		return
	}
	for _, chunk := range commands.Chunk(msg+autoPostNote, commands.MessageLimit) {
		if err := w.sendWithRetry(ctx, chunk); err != nil {
			w.log.Warn().Err(err).Str("channel_id", w.channelID).Msg("reminder: failed to send message")
			return
		}
	}
	w.log.Debug().Int64("to_receive", report.TotalToReceive).Int64("to_pay_out", report.TotalToPayOut).Msg("reminder posted")
}

func (w *reminderWorker) sendWithRetry(ctx context.Context, content string) error {
	const attemptTimeout = 12 * time.Second
	const maxAttempts = 2

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		sendCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		_, err := w.session.ChannelMessageSend(w.channelID, content, discordgo.WithContext(sendCtx))
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isTimeout(err) {
			return err
		}
		t := w.clock.NewTimer(time.Duration(300+rand.Intn(500))*time.Millisecond, "reminder", "retry")
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return lastErr
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
