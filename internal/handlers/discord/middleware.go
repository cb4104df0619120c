package discord

import (
	"log/slog"
	"runtime/debug"

	"github.com/bwmarrin/discordgo"

	"github.com/KirkDiggler/creaturemon/internal/handlers/discord/creature"
)

// RecoverMiddleware must be deferred; it turns a handler panic into a logged error and
// an ephemeral reply
func RecoverMiddleware(r creature.Responder, i *discordgo.InteractionCreate) {
	rec := recover()
	if rec == nil {
		return
	}

	slog.Error("Panic in interaction handler",
		"panic", rec,
		"user_id", creature.UserID(i),
		"stack", string(debug.Stack()))

	err := r.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "❌ An unexpected error occurred.",
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		slog.Error("Failed to send error response to user", "error", err)
	}
}
