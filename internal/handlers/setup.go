package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/christopher-deriv/discord-reminders/internal/models"
	"github.com/christopher-deriv/discord-reminders/internal/wizard"
	"github.com/christopher-deriv/discord-reminders/pkg/discord"
)

// Modal field custom IDs for the details form.
const (
	fieldEventName  = "event_name"
	fieldTargetTime = "target_time"
	fieldTargetDate = "target_date"
	fieldSearchTerm = "search_term"
)

// handleSetupCommand starts the wizard: resolves the actor's eligible
// delivery channels and responds with the first pending step.
func (h *Interactions) handleSetupCommand(ctx context.Context, in *discord.Interaction) *discord.InteractionResponse {
	channels, err := h.eligibleChannels(ctx, in.GuildID)
	if err != nil {
		h.logger.WithError(err).WithField("guild_id", in.GuildID).Error("Failed to list guild channels")
		return discord.EphemeralMessage("Could not look up this server's channels. Please try again.")
	}

	session, err := h.wizard.Begin(in.GuildID, in.Member.User.ID, channels)
	if err != nil {
		if errors.Is(err, wizard.ErrNoChannels) {
			return discord.EphemeralMessage("I don't have permission to send messages in any channels!")
		}
		return h.wizardError(err)
	}

	if session.State == wizard.StateRecurrence {
		// Single eligible channel, channel selection skipped.
		return &discord.InteractionResponse{
			Type: discord.ResponseTypeMessage,
			Data: recurrenceStep(session),
		}
	}

	return &discord.InteractionResponse{
		Type: discord.ResponseTypeMessage,
		Data: channelStep(session),
	}
}

// handleSetupAction advances the wizard by one step. The arg is the
// session token minted at Begin; stale tokens are rejected by the manager.
func (h *Interactions) handleSetupAction(ctx context.Context, in *discord.Interaction, action, token string) *discord.InteractionResponse {
	switch action {
	case "chan":
		session, err := h.wizard.ChooseChannel(token, selectedValue(in))
		if err != nil {
			return h.wizardError(err)
		}
		return discord.UpdateMessage(recurrenceStep(session))

	case "rec":
		session, err := h.wizard.ChooseRecurrence(token, models.Recurrence(selectedValue(in)))
		if err != nil {
			return h.wizardError(err)
		}
		return detailsModal(session)

	case "details":
		session, err := h.wizard.SubmitDetails(ctx, token,
			in.TextInputValue(fieldEventName),
			in.TextInputValue(fieldTargetTime),
			in.TextInputValue(fieldTargetDate),
			in.TextInputValue(fieldSearchTerm),
		)
		if err != nil {
			return h.wizardError(err)
		}
		return &discord.InteractionResponse{
			Type: discord.ResponseTypeMessage,
			Data: mediaStep(session),
		}

	case "gif":
		index, convErr := strconv.Atoi(selectedValue(in))
		if convErr != nil {
			return h.wizardError(wizard.ErrSessionNotFound)
		}
		session, err := h.wizard.SelectCandidate(token, index)
		if err != nil {
			return h.wizardError(err)
		}
		return discord.UpdateMessage(mediaStep(session))

	case "confirm":
		saved, err := h.wizard.Confirm(ctx, token)
		if err != nil {
			if errors.Is(err, wizard.ErrSessionNotFound) || errors.Is(err, wizard.ErrInvalidStep) {
				return h.wizardError(err)
			}
			return discord.UpdateMessage(&discord.ResponseData{
				Content: "Failed to save reminder.",
				Flags:   discord.MessageFlagEphemeral,
			})
		}
		return discord.UpdateMessage(&discord.ResponseData{
			Content: fmt.Sprintf("Reminder set for **%s** at **%s** (%s)!", saved.EventName, saved.TargetTime, saved.Recurrence),
			Flags:   discord.MessageFlagEphemeral,
		})

	case "cancel":
		if err := h.wizard.Cancel(token); err != nil {
			return h.wizardError(err)
		}
		return discord.UpdateMessage(&discord.ResponseData{
			Content: "Reminder setup cancelled.",
			Flags:   discord.MessageFlagEphemeral,
		})
	}

	return discord.EphemeralMessage("This control is no longer active.")
}

// eligibleChannels lists the guild's text channels, narrowed to the
// configured destination allow-list when one is set.
func (h *Interactions) eligibleChannels(ctx context.Context, guildID string) ([]wizard.ChannelOption, error) {
	guildChannels, err := h.channels.GuildChannels(ctx, guildID)
	if err != nil {
		return nil, err
	}

	var options []wizard.ChannelOption
	for _, ch := range guildChannels {
		if len(h.allowedChannels) > 0 {
			if _, ok := h.allowedChannels[ch.ID]; !ok {
				continue
			}
		}
		options = append(options, wizard.ChannelOption{ID: ch.ID, Name: "#" + ch.Name})
	}
	return options, nil
}

// wizardError maps wizard errors onto user-facing ephemeral messages.
func (h *Interactions) wizardError(err error) *discord.InteractionResponse {
	var vErr *wizard.ValidationError
	switch {
	case errors.As(err, &vErr):
		return discord.EphemeralMessage(vErr.Error())
	case errors.Is(err, wizard.ErrNoResults):
		return discord.EphemeralMessage("No GIFs found for that term. Please try again.")
	case errors.Is(err, wizard.ErrSessionNotFound):
		return discord.EphemeralMessage("This setup session has expired. Run /" + CommandSetup + " to start over.")
	case errors.Is(err, wizard.ErrInvalidStep):
		return discord.EphemeralMessage("That step was already completed. Run /" + CommandSetup + " to start over.")
	}

	h.logger.WithError(err).Error("Setup wizard failed")
	return discord.EphemeralMessage("Something went wrong. Please try again.")
}

// channelStep renders the channel selection message.
func channelStep(session *wizard.Session) *discord.ResponseData {
	options := make([]discord.SelectOption, 0, len(session.Channels))
	for _, ch := range session.Channels {
		options = append(options, discord.SelectOption{Label: ch.Name, Value: ch.ID})
	}

	return &discord.ResponseData{
		Content: "Select which channel this reminder should be sent to:",
		Flags:   discord.MessageFlagEphemeral,
		Components: []discord.ActionRow{discord.NewActionRow(discord.Component{
			Type:        discord.ComponentTypeSelectMenu,
			CustomID:    "setup:chan:" + session.Token,
			Placeholder: "Choose a channel for the reminder...",
			Options:     options,
		})},
	}
}

// recurrenceStep renders the recurrence selection message.
func recurrenceStep(session *wizard.Session) *discord.ResponseData {
	return &discord.ResponseData{
		Content: "Select recurrence frequency:",
		Flags:   discord.MessageFlagEphemeral,
		Components: []discord.ActionRow{discord.NewActionRow(discord.Component{
			Type:        discord.ComponentTypeSelectMenu,
			CustomID:    "setup:rec:" + session.Token,
			Placeholder: "How often should this repeat?",
			Options: []discord.SelectOption{
				{Label: "Daily", Value: string(models.RecurrenceDaily), Description: "Repeats every day at the specified time"},
				{Label: "Weekly", Value: string(models.RecurrenceWeekly), Description: "Repeats on this day every week"},
				{Label: "Monthly", Value: string(models.RecurrenceMonthly), Description: "Repeats on this date every month"},
				{Label: "One-time", Value: string(models.RecurrenceOnce), Description: "Remind once then auto-delete"},
			},
		})},
	}
}

// detailsModal renders the details form. The date field is only present
// for recurrences that need one.
func detailsModal(session *wizard.Session) *discord.InteractionResponse {
	required := true
	optional := false

	rows := []discord.ActionRow{
		discord.NewActionRow(discord.Component{
			Type:        discord.ComponentTypeTextInput,
			Style:       1,
			CustomID:    fieldEventName,
			Label:       "Event Name",
			Placeholder: "e.g., Arena Time",
			Required:    &required,
			MaxLength:   models.MaxEventNameLength,
		}),
		discord.NewActionRow(discord.Component{
			Type:        discord.ComponentTypeTextInput,
			Style:       1,
			CustomID:    fieldTargetTime,
			Label:       "Time (HH:MM UTC)",
			Placeholder: "e.g., 23:55",
			Required:    &required,
			MinLength:   5,
			MaxLength:   5,
		}),
	}

	if session.Draft.Recurrence.RequiresDate() {
		rows = append(rows, discord.NewActionRow(discord.Component{
			Type:        discord.ComponentTypeTextInput,
			Style:       1,
			CustomID:    fieldTargetDate,
			Label:       fmt.Sprintf("Date (YYYY-MM-DD) for %s", session.Draft.Recurrence),
			Placeholder: "e.g., 2023-12-25",
			Required:    &required,
			MinLength:   10,
			MaxLength:   10,
		}))
	}

	rows = append(rows, discord.NewActionRow(discord.Component{
		Type:        discord.ComponentTypeTextInput,
		Style:       1,
		CustomID:    fieldSearchTerm,
		Label:       "GIF Theme (Optional)",
		Placeholder: "e.g., cats, matrix, victory",
		Required:    &optional,
	}))

	return &discord.InteractionResponse{
		Type: discord.ResponseTypeModal,
		Data: &discord.ResponseData{
			CustomID:   "setup:details:" + session.Token,
			Title:      "Setup Reminder",
			Components: rows,
		},
	}
}

// mediaStep renders the GIF preview with the candidate select menu and the
// terminal confirm/cancel buttons.
func mediaStep(session *wizard.Session) *discord.ResponseData {
	candidates := session.Draft.Candidates
	selected := candidates[session.Draft.Selected]

	options := make([]discord.SelectOption, 0, len(candidates))
	for i, c := range candidates {
		label := c.Title
		if len(label) > 100 {
			label = label[:100]
		}
		options = append(options, discord.SelectOption{Label: label, Value: strconv.Itoa(i)})
	}

	embed := discord.Embed{Title: "Select a GIF"}.
		WithImage(selected.URL).
		WithFooter("Selected: " + selected.Title)

	return &discord.ResponseData{
		Flags:  discord.MessageFlagEphemeral,
		Embeds: []discord.Embed{embed},
		Components: []discord.ActionRow{
			discord.NewActionRow(discord.Component{
				Type:        discord.ComponentTypeSelectMenu,
				CustomID:    "setup:gif:" + session.Token,
				Placeholder: "Select a GIF to preview...",
				Options:     options,
			}),
			discord.NewActionRow(
				discord.Component{
					Type:     discord.ComponentTypeButton,
					Style:    discord.ButtonStyleSuccess,
					Label:    "Confirm Selection",
					CustomID: "setup:confirm:" + session.Token,
				},
				discord.Component{
					Type:     discord.ComponentTypeButton,
					Style:    discord.ButtonStyleSecondary,
					Label:    "Cancel",
					CustomID: "setup:cancel:" + session.Token,
				},
			),
		},
	}
}
