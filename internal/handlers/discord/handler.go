package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	dnderr "github.com/KirkDiggler/dune-bot-discord/internal/errors"
	"github.com/KirkDiggler/dune-bot-discord/internal/services"
)

// Handler handles all Discord interactions
type Handler struct {
	ServiceProvider *services.Provider
	logger          *zap.Logger
}

// HandlerConfig holds configuration for the Discord handler
type HandlerConfig struct {
	ServiceProvider *services.Provider
	Logger          *zap.Logger
}

// NewHandler creates a new Discord handler
func NewHandler(cfg *HandlerConfig) *Handler {
	if cfg.ServiceProvider == nil {
		panic("service provider is required")
	}

	h := &Handler{
		ServiceProvider: cfg.ServiceProvider,
		logger:          cfg.Logger,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	return h
}

// RegisterCommands registers all slash commands with Discord
func (h *Handler) RegisterCommands(s *discordgo.Session, guildID string) error {
	for _, cmd := range Commands(h.ServiceProvider.Ruleset) {
		_, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, cmd)
		if err != nil {
			return fmt.Errorf("failed to create command %s: %w", cmd.Name, err)
		}
		h.logger.Info("registered command",
			zap.String("command", cmd.Name),
			zap.String("guild_id", guildID))
	}

	return nil
}

// HandleInteraction handles all Discord interactions
func (h *Handler) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		h.handleCommand(s, i)
	case discordgo.InteractionMessageComponent:
		h.handleComponent(s, i)
	}
}

func (h *Handler) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.ApplicationCommandData().Name != CommandName {
		return
	}

	cmd := ParseCommand(i)
	reply, err := h.Dispatch(context.Background(), cmd)
	if err != nil {
		h.logDispatch(cmd, err)
		reply = &Reply{Content: ErrorMessage(err), Ephemeral: true}
	}
	h.respond(s, i, discordgo.InteractionResponseChannelMessageWithSource, reply)
}

func (h *Handler) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	action, err := DecodeComponentAction(i.MessageComponentData().CustomID)
	if err != nil {
		// Not one of ours
		h.logger.Debug("ignoring component", zap.Error(err))
		return
	}

	reply, err := h.HandleComponentAction(context.Background(), interactionUserID(i), action)
	if err != nil {
		h.logDispatch(&Command{Group: GroupCreate, Name: action.Action, UserID: action.UserID, GuildID: action.GuildID}, err)
		reply = &Reply{Content: ErrorMessage(err), Ephemeral: true}
		h.respond(s, i, discordgo.InteractionResponseChannelMessageWithSource, reply)
		return
	}
	h.respond(s, i, discordgo.InteractionResponseUpdateMessage, reply)
}

// HandleComponentAction runs a creation button for the user who pressed it
func (h *Handler) HandleComponentAction(ctx context.Context, userID string, action *ComponentAction) (*Reply, error) {
	if userID != action.UserID {
		return nil, dnderr.State("these buttons belong to someone else's character")
	}

	switch action.Action {
	case ActionFinalize:
		return h.finalize(ctx, action.UserID, action.GuildID)
	default:
		return h.cancel(ctx, action.UserID, action.GuildID)
	}
}

func (h *Handler) respond(s *discordgo.Session, i *discordgo.InteractionCreate, kind discordgo.InteractionResponseType, reply *Reply) {
	data := &discordgo.InteractionResponseData{
		Content:    reply.Content,
		Components: reply.Components,
	}
	if reply.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	// Updates replace the message, so clear stale buttons
	if kind == discordgo.InteractionResponseUpdateMessage && data.Components == nil {
		data.Components = []discordgo.MessageComponent{}
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: kind,
		Data: data,
	})
	if err != nil {
		h.logger.Error("failed to respond to interaction",
			zap.String("interaction_id", i.ID),
			zap.Error(err))
	}
}
