package creature

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	creatureService "github.com/KirkDiggler/creaturemon/internal/services/creature"
)

type CreateRequest struct {
	Session     Responder
	Interaction *discordgo.InteractionCreate
}

// CreateHandler starts a creation draft and shows its editor
type CreateHandler struct {
	service creatureService.Service
}

type CreateHandlerConfig struct {
	Service creatureService.Service
}

func NewCreateHandler(cfg *CreateHandlerConfig) *CreateHandler {
	if cfg == nil || cfg.Service == nil {
		panic("creature service is required")
	}
	return &CreateHandler{service: cfg.Service}
}

func (h *CreateHandler) Handle(req *CreateRequest) error {
	draft, err := h.service.StartDraft(UserID(req.Interaction))
	if err != nil {
		return respondError(req.Session, req.Interaction, "create", err)
	}

	embed, components := BuildDraftView(draft)
	err = req.Session.InteractionRespond(req.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to show creature editor: %w", err)
	}
	return nil
}
