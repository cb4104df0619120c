package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/KirkDiggler/creaturemon/internal/handlers/discord/creature"
	"github.com/KirkDiggler/creaturemon/internal/services"
)

const interactionTimeout = 10 * time.Second

// CommandRegistrar is the part of *discordgo.Session used to register slash commands
type CommandRegistrar interface {
	ApplicationCommandCreate(appID string, guildID string, cmd *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
}

// Handler handles all Discord interactions
type Handler struct {
	ServiceProvider *services.Provider

	creatureCreateHandler *creature.CreateHandler
	creatureListHandler   *creature.ListHandler
	creatureClearHandler  *creature.ClearHandler
	creatureEditorHandler *creature.EditorHandler
}

// HandlerConfig holds configuration for the handler
type HandlerConfig struct {
	ServiceProvider *services.Provider
}

// NewHandler creates a new Discord handler
func NewHandler(cfg *HandlerConfig) *Handler {
	if cfg == nil || cfg.ServiceProvider == nil || cfg.ServiceProvider.CreatureService == nil {
		panic("service provider with a creature service is required")
	}

	svc := cfg.ServiceProvider.CreatureService
	return &Handler{
		ServiceProvider: cfg.ServiceProvider,
		creatureCreateHandler: creature.NewCreateHandler(&creature.CreateHandlerConfig{
			Service: svc,
		}),
		creatureListHandler:   creature.NewListHandler(svc),
		creatureClearHandler:  creature.NewClearHandler(svc),
		creatureEditorHandler: creature.NewEditorHandler(svc),
	}
}

// Commands returns the slash commands the bot serves
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "creature",
			Description: "Create and manage your creatures",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "create",
					Description: "Create a new creature",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
				},
				{
					Name:        "list",
					Description: "List your saved creatures",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
				},
				{
					Name:        "clear",
					Description: "Delete every creature you have saved",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
				},
			},
		},
	}
}

// RegisterCommands registers all slash commands with Discord. An empty guildID registers globally.
func (h *Handler) RegisterCommands(r CommandRegistrar, appID, guildID string) error {
	for _, cmd := range Commands() {
		if _, err := r.ApplicationCommandCreate(appID, guildID, cmd); err != nil {
			return fmt.Errorf("failed to create command %s: %w", cmd.Name, err)
		}
		slog.Info("Registered command", "command", cmd.Name, "guild_id", guildID)
	}
	return nil
}

// HandleInteraction is registered with the discordgo session
func (h *Handler) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.Respond(s, i)
}

// Respond routes an interaction to its creature handler
func (h *Handler) Respond(r creature.Responder, i *discordgo.InteractionCreate) {
	defer RecoverMiddleware(r, i)

	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	var err error
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		err = h.handleCommand(ctx, r, i)
	case discordgo.InteractionMessageComponent:
		err = h.handleComponent(ctx, r, i)
	case discordgo.InteractionModalSubmit:
		err = h.handleModalSubmit(r, i)
	}

	if err != nil {
		slog.Error("Failed to handle interaction",
			"type", i.Type.String(),
			"user_id", creature.UserID(i),
			"error", err)
	}
}

func (h *Handler) handleCommand(ctx context.Context, r creature.Responder, i *discordgo.InteractionCreate) error {
	data := i.ApplicationCommandData()
	if data.Name != "creature" || len(data.Options) == 0 {
		return nil
	}

	switch sub := data.Options[0].Name; sub {
	case "create":
		return h.creatureCreateHandler.Handle(&creature.CreateRequest{Session: r, Interaction: i})
	case "list":
		return h.creatureListHandler.Handle(ctx, &creature.ListRequest{Session: r, Interaction: i})
	case "clear":
		return h.creatureClearHandler.Prompt(&creature.ClearRequest{Session: r, Interaction: i})
	default:
		return fmt.Errorf("unknown creature subcommand %q", sub)
	}
}

// handleComponent dispatches on custom IDs of the form "creature:<action>[:<arg>]"
func (h *Handler) handleComponent(ctx context.Context, r creature.Responder, i *discordgo.InteractionCreate) error {
	customID := i.MessageComponentData().CustomID
	parts := strings.SplitN(customID, ":", 3)
	if len(parts) < 2 || parts[0] != creature.CustomIDPrefix {
		return nil
	}

	req := &creature.EditorRequest{Session: r, Interaction: i}
	clearReq := &creature.ClearRequest{Session: r, Interaction: i}

	switch parts[0] + ":" + parts[1] {
	case creature.CustomIDAttribute:
		if len(parts) < 3 {
			return fmt.Errorf("attribute select without type: %s", customID)
		}
		return h.creatureEditorHandler.SelectAttribute(req, parts[2])
	case creature.CustomIDAvatar:
		return h.creatureEditorHandler.SelectAvatar(req)
	case creature.CustomIDName:
		return h.creatureEditorHandler.OpenNameModal(req)
	case creature.CustomIDSuggestName:
		return h.creatureEditorHandler.SuggestName(req)
	case creature.CustomIDSave:
		return h.creatureEditorHandler.Save(ctx, req)
	case creature.CustomIDClearConfirm:
		return h.creatureClearHandler.Confirm(ctx, clearReq)
	case creature.CustomIDClearCancel:
		return h.creatureClearHandler.Cancel(clearReq)
	default:
		return fmt.Errorf("unknown creature component %q", customID)
	}
}

func (h *Handler) handleModalSubmit(r creature.Responder, i *discordgo.InteractionCreate) error {
	if i.ModalSubmitData().CustomID != creature.CustomIDNameModal {
		return nil
	}
	return h.creatureEditorHandler.SubmitName(&creature.EditorRequest{Session: r, Interaction: i})
}
