// Sube las definiciones de comandos a Discord (bulk overwrite). Con
// DISCORD_GUILD_ID van al guild, sin él son globales.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/discord-interactions/internal/adapters/discord"
	"github.com/jose-valero/discord-interactions/internal/app/commands"
	"github.com/jose-valero/discord-interactions/internal/infra/config"
	"github.com/jose-valero/discord-interactions/internal/infra/logging"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "sólo lista los comandos")
	global := flag.Bool("global", false, "ignora DISCORD_GUILD_ID y registra global")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.New("error", "text").Error("config", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	reg := discord.NewRegistry()
	if err := commands.New(commands.WithLogger(log)).Register(reg); err != nil {
		log.Error("registry", "err", err)
		os.Exit(1)
	}
	cmds := reg.Commands()
	for _, c := range cmds {
		log.Info("command", "name", c.Name, "type", int(c.Type))
	}
	if *dryRun {
		return
	}

	if cfg.DiscordToken == "" || cfg.DiscordAppID == "" {
		log.Warn("DISCORD_BOT_TOKEN o DISCORD_APPLICATION_ID faltan, no registro nada")
		return
	}

	s, err := discord.NewRestSession(cfg.DiscordToken, cfg.DebugRest, log)
	if err != nil {
		log.Error("session", "err", err)
		os.Exit(1)
	}

	guild := cfg.DiscordGuild
	if *global {
		guild = ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	out, err := s.ApplicationCommandBulkOverwrite(cfg.DiscordAppID, guild, cmds, discordgo.WithContext(ctx))
	if err != nil {
		log.Error("bulk overwrite", "err", err, "guild", guild)
		os.Exit(1)
	}
	scope := "global"
	if guild != "" {
		scope = "guild " + guild
	}
	log.Info("✅ comandos registrados", "count", len(out), "scope", scope)
}
