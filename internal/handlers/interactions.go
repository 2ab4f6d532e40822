// Package handlers routes incoming Discord interactions to the setup
// wizard and the edit/delete flow, and renders their outcomes back into
// interaction responses.
package handlers

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/christopher-deriv/discord-reminders/internal/auth"
	"github.com/christopher-deriv/discord-reminders/internal/service"
	"github.com/christopher-deriv/discord-reminders/internal/wizard"
	"github.com/christopher-deriv/discord-reminders/pkg/discord"
)

// Command names registered with Discord.
const (
	CommandSetup = "remind-setup"
	CommandEdit  = "remind-edit"
)

const deniedMessage = "You do not have the required role to use this command."

// ChannelLister resolves the text channels of a guild.
type ChannelLister interface {
	GuildChannels(ctx context.Context, guildID string) ([]discord.Channel, error)
}

// Interactions dispatches interaction callbacks by command name and
// component custom ID.
type Interactions struct {
	svc      *service.Service
	wizard   *wizard.Manager
	checker  *auth.Checker
	channels ChannelLister
	logger   *logrus.Logger

	// allowedChannels limits wizard destinations when configured.
	allowedChannels map[string]struct{}
}

// NewInteractions creates the dispatcher.
func NewInteractions(svc *service.Service, wiz *wizard.Manager, checker *auth.Checker, channels ChannelLister, allowedChannelIDs []string, logger *logrus.Logger) *Interactions {
	allowed := make(map[string]struct{}, len(allowedChannelIDs))
	for _, id := range allowedChannelIDs {
		allowed[id] = struct{}{}
	}
	return &Interactions{
		svc:             svc,
		wizard:          wiz,
		checker:         checker,
		channels:        channels,
		logger:          logger,
		allowedChannels: allowed,
	}
}

// Handle processes one interaction and always produces a response; every
// failure is rendered as an ephemeral message for the acting user.
func (h *Interactions) Handle(ctx context.Context, in *discord.Interaction) *discord.InteractionResponse {
	switch in.Type {
	case discord.InteractionTypePing:
		return &discord.InteractionResponse{Type: discord.ResponseTypePong}

	case discord.InteractionTypeCommand:
		return h.handleCommand(ctx, in)

	case discord.InteractionTypeComponent, discord.InteractionTypeModalSubmit:
		return h.handleCustomID(ctx, in)
	}

	h.logger.WithField("type", in.Type).Warn("Unsupported interaction type")
	return discord.EphemeralMessage("Unsupported interaction.")
}

func (h *Interactions) handleCommand(ctx context.Context, in *discord.Interaction) *discord.InteractionResponse {
	h.logger.WithFields(logrus.Fields{
		"command":  in.Data.Name,
		"guild_id": in.GuildID,
		"user_id":  in.Member.User.ID,
	}).Info("Received command")

	if !h.checker.Allowed(in.Member) {
		return discord.EphemeralMessage(deniedMessage)
	}

	switch in.Data.Name {
	case CommandSetup:
		return h.handleSetupCommand(ctx, in)
	case CommandEdit:
		return h.handleEditCommand(ctx, in)
	}

	h.logger.WithField("command", in.Data.Name).Warn("Unknown command")
	return discord.EphemeralMessage("Unknown command.")
}

// handleCustomID routes component clicks and modal submissions. Custom IDs
// follow the scheme "<flow>:<action>:<token or id>".
func (h *Interactions) handleCustomID(ctx context.Context, in *discord.Interaction) *discord.InteractionResponse {
	flow, action, arg := splitCustomID(in.Data.CustomID)

	switch flow {
	case "setup":
		return h.handleSetupAction(ctx, in, action, arg)
	case "edit":
		// Edit actions arrive as separate interactions, so the
		// authorization check is repeated here.
		if !h.checker.Allowed(in.Member) {
			return discord.EphemeralMessage(deniedMessage)
		}
		return h.handleEditAction(ctx, in, action, arg)
	}

	h.logger.WithField("custom_id", in.Data.CustomID).Warn("Unknown component")
	return discord.EphemeralMessage("This control is no longer active.")
}

func splitCustomID(customID string) (flow, action, arg string) {
	parts := strings.SplitN(customID, ":", 3)
	switch len(parts) {
	case 3:
		return parts[0], parts[1], parts[2]
	case 2:
		return parts[0], parts[1], ""
	}
	return customID, "", ""
}

// selectedValue returns the single chosen value of a select menu.
func selectedValue(in *discord.Interaction) string {
	if len(in.Data.Values) == 0 {
		return ""
	}
	return in.Data.Values[0]
}
