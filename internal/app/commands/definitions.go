package commands

import "github.com/bwmarrin/discordgo"

var (
	minLen = 1
	maxLen = 200
)

var pingDef = &discordgo.ApplicationCommand{
	Name:        "ping",
	Description: "Comprueba que el bot responde",
}

var echoDef = &discordgo.ApplicationCommand{
	Name:        "echo",
	Description: "Repite lo que le pases",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "text",
			Description: "Repite un texto",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "message", Description: "Qué repetir", Required: true, MinLength: &minLen, MaxLength: maxLen},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "times", Description: "Cuántas veces (1-5)"},
				{Type: discordgo.ApplicationCommandOptionBoolean, Name: "public", Description: "Visible para todos"},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "user",
			Description: "Menciona a un usuario",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "target", Description: "A quién", Required: true},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "file",
			Description: "Devuelve el nombre y tamaño de un adjunto",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionAttachment, Name: "file", Description: "Archivo", Required: true},
			},
		},
	},
}

var searchDef = &discordgo.ApplicationCommand{
	Name:        "search",
	Description: "Busca un mapa del pool competitivo",
	Options: []*discordgo.ApplicationCommandOption{
		{Type: discordgo.ApplicationCommandOptionString, Name: "map", Description: "Nombre del mapa", Required: true, Autocomplete: true},
	},
}

var feedbackDef = &discordgo.ApplicationCommand{
	Name:        "feedback",
	Description: "Envía feedback a los admins",
}

var confirmDef = &discordgo.ApplicationCommand{
	Name:        "confirm",
	Description: "Pide confirmación con botones",
	Options: []*discordgo.ApplicationCommandOption{
		{Type: discordgo.ApplicationCommandOptionString, Name: "action", Description: "Qué confirmar", Required: true},
	},
}

var userInfoDef = &discordgo.ApplicationCommand{
	Name: "User info",
	Type: discordgo.UserApplicationCommand,
}

var quoteDef = &discordgo.ApplicationCommand{
	Name: "Quote",
	Type: discordgo.MessageApplicationCommand,
}
