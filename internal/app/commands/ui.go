package commands

import (
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
)

// mapPool es el pool competitivo; value es el id interno del mapa.
func mapPool() []*discordgo.ApplicationCommandOptionChoice {
	mk := func(name, value, es string) *discordgo.ApplicationCommandOptionChoice {
		return &discordgo.ApplicationCommandOptionChoice{
			Name:  name,
			Value: value,
			NameLocalizations: map[discordgo.Locale]string{
				discordgo.SpanishES: es,
			},
		}
	}
	return []*discordgo.ApplicationCommandOptionChoice{
		mk("Ancient", "de_ancient", "Antigua"),
		mk("Anubis", "de_anubis", "Anubis"),
		mk("Dust II", "de_dust2", "Polvo II"),
		mk("Inferno", "de_inferno", "Infierno"),
		mk("Mirage", "de_mirage", "Espejismo"),
		mk("Nuke", "de_nuke", "Nuclear"),
		mk("Train", "de_train", "Tren"),
	}
}

func localizedName(c *discordgo.ApplicationCommandOptionChoice, locale discordgo.Locale) string {
	if n, ok := c.NameLocalizations[locale]; ok && n != "" {
		return n
	}
	return c.Name
}

func confirmButtons(userID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Sí", Style: discordgo.SuccessButton, CustomID: confirmPrefix + "/yes?" + userID},
			discordgo.Button{Label: "No", Style: discordgo.DangerButton, CustomID: confirmPrefix + "/no?" + userID},
		}},
	}
}

func feedbackModal(userID string) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: feedbackPrefix + "/form?" + userID,
		Title:    "Feedback",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{CustomID: "topic", Label: "Tema", Style: discordgo.TextInputShort, Required: true, MaxLength: 100},
			}},
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{CustomID: "body", Label: "Detalle", Style: discordgo.TextInputParagraph, MaxLength: 1000},
			}},
		},
	}
}

// snowflakeTime saca la fecha de creación de un id de Discord.
func snowflakeTime(id string) time.Time {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return time.Time{}
	}
	const discordEpoch = 1420070400000
	return time.UnixMilli(int64(n>>22) + discordEpoch)
}
