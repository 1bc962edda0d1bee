package commands

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/susu3304/pokerclub/internal/cashier"
	"github.com/susu3304/pokerclub/internal/ranking"
)

// Reports is the read side of the club the bot exposes.
type Reports interface {
	Cashier(ctx context.Context) (cashier.Report, error)
	AnnualRanking(ctx context.Context, year int) ([]ranking.Entry, error)
	LastGameRanking(ctx context.Context) ([]ranking.Entry, error)
	Highlights(ctx context.Context) (ranking.Highlights, error)
	CurrentYear() int
}

// Reply builds the text for a slash command. ok is false for commands this
// package does not own.
func Reply(ctx context.Context, reports Reports, data discordgo.ApplicationCommandInteractionData) (content string, ok bool, err error) {
	switch data.Name {
	case "cashier":
		r, err := reports.Cashier(ctx)
		if err != nil {
			return "", true, err
		}
		return FormatCashier(r), true, nil
	case "ranking":
		year := reports.CurrentYear()
		if v := getIntOption(data.Options, "year"); v != nil {
			year = int(*v)
		}
		entries, err := reports.AnnualRanking(ctx, year)
		if err != nil {
			return "", true, err
		}
		return FormatRanking(year, entries), true, nil
	case "lastgame":
		entries, err := reports.LastGameRanking(ctx)
		if err != nil {
			return "", true, err
		}
		return FormatLastGame(entries), true, nil
	case "highlights":
		h, err := reports.Highlights(ctx)
		if err != nil {
			return "", true, err
		}
		return FormatHighlights(h), true, nil
	}
	return "", false, nil
}

// Handle answers an application command, spilling long replies into follow-up
// channel messages.
func Handle(ctx context.Context, s Session, i *discordgo.InteractionCreate, reports Reports) error {
	content, ok, err := Reply(ctx, reports, i.ApplicationCommandData())
	if !ok {
		return nil
	}
	if err != nil {
		if rerr := respondText(s, i, "Could not load club data, try again shortly."); rerr != nil {
			return rerr
		}
		return fmt.Errorf("%s: %w", i.ApplicationCommandData().Name, err)
	}

	chunks := Chunk(content, MessageLimit)
	if len(chunks) == 0 {
		chunks = []string{"Nothing to show."}
	}
	if err := respondText(s, i, chunks[0]); err != nil {
		return err
	}
	for _, c := range chunks[1:] {
		if _, err := s.ChannelMessageSend(i.ChannelID, c); err != nil {
			return err
		}
	}
	return nil
}
