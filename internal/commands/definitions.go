package commands

import "github.com/bwmarrin/discordgo"

func GetCommands() []*discordgo.ApplicationCommand {
	minYear := float64(2000)
	return []*discordgo.ApplicationCommand{
		{
			Name:         "cashier",
			Description:  "Show who owes the club and who the club owes",
			DMPermission: boolPtr(false),
		},
		{
			Name:         "ranking",
			Description:  "Show the annual profit ranking",
			DMPermission: boolPtr(false),
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "year",
					Description: "Calendar year (defaults to the current one)",
					Required:    false,
					MinValue:    &minYear,
				},
			},
		},
		{
			Name:         "lastgame",
			Description:  "Show the results of the most recent game",
			DMPermission: boolPtr(false),
		},
		{
			Name:         "highlights",
			Description:  "Show the club's all-time highlights",
			DMPermission: boolPtr(false),
		},
	}
}

func boolPtr(b bool) *bool {
	return &b
}
