package commands

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/susu3304/pokerclub/internal/cashier"
	"github.com/susu3304/pokerclub/internal/ledger"
	"github.com/susu3304/pokerclub/internal/ranking"
)

type fakeReports struct {
	report    cashier.Report
	annual    map[int][]ranking.Entry
	last      []ranking.Entry
	err       error
	year      int
	askedYear int
}

func (f *fakeReports) Cashier(ctx context.Context) (cashier.Report, error) {
	return f.report, f.err
}

func (f *fakeReports) AnnualRanking(ctx context.Context, year int) ([]ranking.Entry, error) {
	f.askedYear = year
	return f.annual[year], f.err
}

func (f *fakeReports) LastGameRanking(ctx context.Context) ([]ranking.Entry, error) {
	return f.last, f.err
}

func (f *fakeReports) Highlights(ctx context.Context) (ranking.Highlights, error) {
	return ranking.Highlights{TotalPot: 400}, f.err
}

func (f *fakeReports) CurrentYear() int { return f.year }

type fakeSession struct {
	responses []string
	messages  []string
}

func (s *fakeSession) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error {
	s.responses = append(s.responses, resp.Data.Content)
	return nil
}

func (s *fakeSession) ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.messages = append(s.messages, content)
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func sampleReport() cashier.Report {
	return cashier.Report{
		Balances: []cashier.Balance{
			{Player: ledger.Player{ID: "p1", Name: "Ana"}, Balance: 50, Unpaid: make([]cashier.UnpaidEntry, 2)},
			{Player: ledger.Player{ID: "p3", Name: "Carla"}},
			{Player: ledger.Player{ID: "p2", Name: "Bruno"}, Balance: -50, Unpaid: make([]cashier.UnpaidEntry, 2)},
		},
		TotalToReceive: 50,
		TotalToPayOut:  50,
	}
}

func TestFormatCashier(t *testing.T) {
	out := FormatCashier(sampleReport())
	assert.Equal(t, "**Cashier**\nTo receive: 50 | To pay out: 50\nAna: +50 (2 unpaid)\nBruno: -50 (2 unpaid)", out)

	assert.Contains(t, FormatCashier(cashier.Report{}), "Everyone is settled up.")
}

func TestFormatReminder(t *testing.T) {
	assert.Equal(t, "**Outstanding balances**\n- Ana is owed 50\n- Bruno owes 50", FormatReminder(sampleReport()))
	assert.Empty(t, FormatReminder(cashier.Report{}))
}

func TestFormatRanking(t *testing.T) {
	entries := []ranking.Entry{{PlayerID: "p1", Name: "Ana", Profit: 50}, {PlayerID: "p2", Name: "Bruno", Profit: -50}}
	assert.Equal(t, "**Ranking 2026**\n1. Ana +50\n2. Bruno -50", FormatRanking(2026, entries))
	assert.Equal(t, "No sessions in 2025.", FormatRanking(2025, nil))
	assert.Equal(t, "No sessions recorded yet.", FormatLastGame(nil))
}

func TestChunk(t *testing.T) {
	lines := make([]string, 30)
	for i := range lines {
		lines[i] = strings.Repeat("x", 99)
	}
	chunks := Chunk(strings.Join(lines, "\n"), 1000)
	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 1000)
	}
	assert.Equal(t, strings.Join(lines, "\n"), strings.Join(chunks, "\n"))

	long := Chunk(strings.Repeat("y", 25), 10)
	assert.Equal(t, []string{"yyyyyyyyyy", "yyyyyyyyyy", "yyyyy"}, long)
}

func TestReplyRanking(t *testing.T) {
	reports := &fakeReports{year: 2026, annual: map[int][]ranking.Entry{
		2025: {{PlayerID: "p1", Name: "Ana", Profit: 10}},
	}}

	out, ok, err := Reply(context.Background(), reports, discordgo.ApplicationCommandInteractionData{Name: "ranking"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2026, reports.askedYear)
	assert.Equal(t, "No sessions in 2026.", out)

	data := discordgo.ApplicationCommandInteractionData{
		Name: "ranking",
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: "year", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(2025)},
		},
	}
	out, _, err = Reply(context.Background(), reports, data)
	require.NoError(t, err)
	assert.Equal(t, "**Ranking 2025**\n1. Ana +10", out)

	_, ok, _ = Reply(context.Background(), reports, discordgo.ApplicationCommandInteractionData{Name: "unknown"})
	assert.False(t, ok)
}

func TestHandleReportsFailure(t *testing.T) {
	s := &fakeSession{}
	reports := &fakeReports{err: errors.New("db down")}
	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{Name: "cashier"},
	}}

	err := Handle(context.Background(), s, i, reports)
	assert.Error(t, err)
	require.Len(t, s.responses, 1)
	assert.NotContains(t, s.responses[0], "db down")
}

func TestHandleSpillsLongReplies(t *testing.T) {
	s := &fakeSession{}
	var entries []ranking.Entry
	for i := 0; i < 200; i++ {
		entries = append(entries, ranking.Entry{PlayerID: "p", Name: strings.Repeat("n", 20), Profit: int64(i)})
	}
	reports := &fakeReports{last: entries}
	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		ChannelID: "chan",
		Data:      discordgo.ApplicationCommandInteractionData{Name: "lastgame"},
	}}

	require.NoError(t, Handle(context.Background(), s, i, reports))
	require.Len(t, s.responses, 1)
	assert.NotEmpty(t, s.messages)
	for _, m := range append(s.responses, s.messages...) {
		assert.LessOrEqual(t, len(m), MessageLimit)
	}
}
