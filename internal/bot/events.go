package bot

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/susu3304/pokerclub/internal/commands"
)

const interactionTimeout = 10 * time.Second

func (b *Bot) onReady(s *discordgo.Session, event *discordgo.Ready) {
	b.log.Info().Str("user", event.User.Username).Msg("connected")

	// Register commands for all guilds
	for _, guild := range event.Guilds {
		if err := b.registerGuildCommands(guild.ID); err != nil {
			b.log.Error().Err(err).Str("guild_id", guild.ID).Msg("failed to register commands")
		}
	}
}

func (b *Bot) onGuildCreate(s *discordgo.Session, event *discordgo.GuildCreate) {
	b.log.Info().Str("guild", event.Name).Str("guild_id", event.ID).Msg("guild available, ensuring commands")
	if err := b.registerGuildCommands(event.ID); err != nil {
		b.log.Error().Err(err).Str("guild_id", event.ID).Msg("failed to register commands")
	}
}

func (b *Bot) registerGuildCommands(guildID string) error {
	cmds := commands.GetCommands()
	// Delete existing commands and register new ones
	_, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, guildID, cmds)
	if err != nil {
		return err
	}

	b.log.Debug().Str("guild_id", guildID).Int("commands", len(cmds)).Msg("registered application commands")
	return nil
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()
	if err := commands.Handle(ctx, s, i, b.reports); err != nil {
		b.log.Warn().Err(err).Str("command", i.ApplicationCommandData().Name).Msg("command failed")
	}
}
