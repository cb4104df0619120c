package creature

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/KirkDiggler/creaturemon/internal/entities"
	apperr "github.com/KirkDiggler/creaturemon/internal/errors"
	creatureService "github.com/KirkDiggler/creaturemon/internal/services/creature"
	"github.com/KirkDiggler/creaturemon/internal/viewmodel"
)

type EditorRequest struct {
	Session     Responder
	Interaction *discordgo.InteractionCreate
}

// EditorHandler applies component and modal interactions to the user's draft
type EditorHandler struct {
	service creatureService.Service
}

func NewEditorHandler(service creatureService.Service) *EditorHandler {
	return &EditorHandler{service: service}
}

// SelectAttribute handles "creature:attribute:<type>" selects
func (h *EditorHandler) SelectAttribute(req *EditorRequest, attribute string) error {
	draft, err := h.service.Draft(UserID(req.Interaction))
	if err != nil {
		return respondError(req.Session, req.Interaction, "select_attribute", err)
	}

	t, err := entities.ParseAttributeType(attribute)
	if err != nil {
		return respondError(req.Session, req.Interaction, "select_attribute",
			apperr.InvalidArgumentf("Unknown attribute %q.", attribute))
	}

	index, err := selectedInt(req.Interaction)
	if err != nil {
		return respondError(req.Session, req.Interaction, "select_attribute", err)
	}

	if err := draft.SelectAttribute(t, index); err != nil {
		return respondError(req.Session, req.Interaction, "select_attribute", err)
	}
	return updateDraft(req, draft, "")
}

// SelectAvatar handles the avatar select
func (h *EditorHandler) SelectAvatar(req *EditorRequest) error {
	draft, err := h.service.Draft(UserID(req.Interaction))
	if err != nil {
		return respondError(req.Session, req.Interaction, "select_avatar", err)
	}

	id, err := selectedInt(req.Interaction)
	if err != nil {
		return respondError(req.Session, req.Interaction, "select_avatar", err)
	}

	if err := draft.SelectAvatar(id); err != nil {
		return respondError(req.Session, req.Interaction, "select_avatar", err)
	}
	return updateDraft(req, draft, "")
}

// OpenNameModal shows a text input prefilled with the current name
func (h *EditorHandler) OpenNameModal(req *EditorRequest) error {
	draft, err := h.service.Draft(UserID(req.Interaction))
	if err != nil {
		return respondError(req.Session, req.Interaction, "open_name", err)
	}

	err = req.Session.InteractionRespond(req.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: CustomIDNameModal,
			Title:    "Name your creature",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    nameInputID,
							Label:       "Name",
							Style:       discordgo.TextInputShort,
							Placeholder: "Enter a name",
							Value:       draft.Name(),
							Required:    true,
							MinLength:   1,
							MaxLength:   maxNameLength,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to open name modal: %w", err)
	}
	return nil
}

// SubmitName handles the name modal
func (h *EditorHandler) SubmitName(req *EditorRequest) error {
	draft, err := h.service.Draft(UserID(req.Interaction))
	if err != nil {
		return respondError(req.Session, req.Interaction, "submit_name", err)
	}

	name := strings.TrimSpace(modalValue(req.Interaction.ModalSubmitData(), nameInputID))
	if name == "" {
		return respondError(req.Session, req.Interaction, "submit_name",
			apperr.InvalidArgument("Name cannot be blank."))
	}

	draft.SetName(name)
	return updateDraft(req, draft, "")
}

// SuggestName fills the name from the bestiary
func (h *EditorHandler) SuggestName(req *EditorRequest) error {
	name, err := h.service.SuggestName(UserID(req.Interaction))
	if err != nil {
		return respondError(req.Session, req.Interaction, "suggest_name", err)
	}

	draft, err := h.service.Draft(UserID(req.Interaction))
	if err != nil {
		return respondError(req.Session, req.Interaction, "suggest_name", err)
	}
	return updateDraft(req, draft, fmt.Sprintf("🎲 How about **%s**?", name))
}

// Save persists the draft and reports the outcome in place
func (h *EditorHandler) Save(ctx context.Context, req *EditorRequest) error {
	userID := UserID(req.Interaction)
	result, err := h.service.Save(ctx, userID)
	if err != nil {
		return respondError(req.Session, req.Interaction, "save", err)
	}

	draft, err := h.service.Draft(userID)
	if err != nil {
		return respondError(req.Session, req.Interaction, "save", err)
	}

	switch {
	case result.Saved:
		return updateDraft(req, draft, fmt.Sprintf("✅ Saved **%s**! Use `/creature list` to see your roster.", result.Creature.Name))
	case apperr.IsValidation(result.Err):
		return updateDraft(req, draft, "⚠️ Still needed: "+strings.Join(draft.Missing(), ", "))
	default:
		return respondError(req.Session, req.Interaction, "save", result.Err)
	}
}

func updateDraft(req *EditorRequest, draft *viewmodel.Creation, content string) error {
	embed, components := BuildDraftView(draft)
	err := req.Session.InteractionRespond(req.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to update creature editor: %w", err)
	}
	return nil
}

func selectedInt(i *discordgo.InteractionCreate) (int, error) {
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return 0, apperr.InvalidArgument("Nothing was selected.")
	}
	n, err := strconv.Atoi(values[0])
	if err != nil {
		return 0, apperr.InvalidArgumentf("Invalid selection %q.", values[0])
	}
	return n, nil
}

// modalValue finds a text input by custom ID in a submitted modal
func modalValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, row := range data.Components {
		var inner []discordgo.MessageComponent
		switch r := row.(type) {
		case *discordgo.ActionsRow:
			inner = r.Components
		case discordgo.ActionsRow:
			inner = r.Components
		}
		for _, c := range inner {
			switch input := c.(type) {
			case *discordgo.TextInput:
				if input.CustomID == customID {
					return input.Value
				}
			case discordgo.TextInput:
				if input.CustomID == customID {
					return input.Value
				}
			}
		}
	}
	return ""
}
