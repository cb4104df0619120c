package creature

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	creatureService "github.com/KirkDiggler/creaturemon/internal/services/creature"
)

type ClearRequest struct {
	Session     Responder
	Interaction *discordgo.InteractionCreate
}

// ClearHandler asks for confirmation and then empties the user's roster
type ClearHandler struct {
	service creatureService.Service
}

func NewClearHandler(service creatureService.Service) *ClearHandler {
	return &ClearHandler{service: service}
}

// Prompt shows the confirm/cancel buttons
func (h *ClearHandler) Prompt(req *ClearRequest) error {
	err := req.Session.InteractionRespond(req.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "⚠️ This deletes every creature in your roster. Are you sure?",
			Flags:   discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.Button{
							Label:    "Delete all",
							Style:    discordgo.DangerButton,
							CustomID: CustomIDClearConfirm,
						},
						discordgo.Button{
							Label:    "Cancel",
							Style:    discordgo.SecondaryButton,
							CustomID: CustomIDClearCancel,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to prompt for clear: %w", err)
	}
	return nil
}

// Confirm clears the roster
func (h *ClearHandler) Confirm(ctx context.Context, req *ClearRequest) error {
	if err := h.service.Clear(ctx, UserID(req.Interaction)); err != nil {
		return respondError(req.Session, req.Interaction, "clear", err)
	}
	return updateMessage(req.Session, req.Interaction, "🗑️ Your roster has been cleared.")
}

// Cancel dismisses the prompt
func (h *ClearHandler) Cancel(req *ClearRequest) error {
	return updateMessage(req.Session, req.Interaction, "Nothing was deleted.")
}

func updateMessage(r Responder, i *discordgo.InteractionCreate, content string) error {
	err := r.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}
	return nil
}
