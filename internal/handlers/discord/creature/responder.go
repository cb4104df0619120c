package creature

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	apperr "github.com/KirkDiggler/creaturemon/internal/errors"
)

// Responder is the part of *discordgo.Session the creature handlers use
type Responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

// Custom IDs for creature components. Attribute selects append ":<attribute type>".
const (
	CustomIDPrefix       = "creature"
	CustomIDAttribute    = "creature:attribute"
	CustomIDAvatar       = "creature:avatar"
	CustomIDName         = "creature:name"
	CustomIDSuggestName  = "creature:suggest_name"
	CustomIDSave         = "creature:save"
	CustomIDNameModal    = "creature:name_modal"
	CustomIDClearConfirm = "creature:clear_confirm"
	CustomIDClearCancel  = "creature:clear_cancel"

	nameInputID   = "name"
	maxNameLength = 32
)

// UserID returns the invoking user for guild and DM interactions
func UserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// userMessage turns an error into text safe to show in Discord
func userMessage(err error) string {
	switch apperr.GetCode(err) {
	case apperr.CodeNotFound:
		return "Your creation session has expired. Use `/creature create` to start a new one."
	case apperr.CodeInvalidArgument, apperr.CodeValidation:
		var e *apperr.Error
		if errors.As(err, &e) {
			return e.Message
		}
		return err.Error()
	case apperr.CodeUnavailable:
		return "That feature is unavailable right now, please try again later."
	default:
		return "Something went wrong, please try again."
	}
}

func respondEphemeral(r Responder, i *discordgo.InteractionCreate, content string) error {
	return r.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// respondError logs err and shows the user a short ephemeral explanation
func respondError(r Responder, i *discordgo.InteractionCreate, action string, err error) error {
	slog.Error("Creature interaction failed",
		"action", action,
		"user_id", UserID(i),
		"code", apperr.GetCode(err),
		"error", err)

	if respErr := respondEphemeral(r, i, fmt.Sprintf("❌ %s", userMessage(err))); respErr != nil {
		return fmt.Errorf("failed to respond with error: %w", respErr)
	}
	return nil
}
