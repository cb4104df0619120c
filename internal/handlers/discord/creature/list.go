package creature

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	creatureService "github.com/KirkDiggler/creaturemon/internal/services/creature"
)

type ListRequest struct {
	Session     Responder
	Interaction *discordgo.InteractionCreate
}

// ListHandler shows the invoking user's roster
type ListHandler struct {
	service creatureService.Service
}

func NewListHandler(service creatureService.Service) *ListHandler {
	return &ListHandler{service: service}
}

func (h *ListHandler) Handle(ctx context.Context, req *ListRequest) error {
	roster, err := h.service.List(ctx, UserID(req.Interaction))
	if err != nil {
		return respondError(req.Session, req.Interaction, "list", err)
	}

	if len(roster) == 0 {
		return respondEphemeral(req.Session, req.Interaction,
			"📝 You don't have any creatures yet. Use `/creature create` to make one!")
	}

	err = req.Session.InteractionRespond(req.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{BuildRosterEmbed(h.service.Catalog(), roster)},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to show roster: %w", err)
	}
	return nil
}
