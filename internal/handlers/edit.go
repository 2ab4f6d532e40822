package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/christopher-deriv/discord-reminders/internal/models"
	"github.com/christopher-deriv/discord-reminders/internal/repository"
	"github.com/christopher-deriv/discord-reminders/pkg/discord"
)

// handleEditCommand lists the guild's reminders for management.
func (h *Interactions) handleEditCommand(ctx context.Context, in *discord.Interaction) *discord.InteractionResponse {
	reminders, err := h.svc.ListGuildReminders(ctx, in.GuildID)
	if err != nil {
		h.logger.WithError(err).WithField("guild_id", in.GuildID).Error("Failed to list reminders")
		return discord.EphemeralMessage("Could not load reminders. Please try again.")
	}

	if len(reminders) == 0 {
		return discord.EphemeralMessage("No active reminders found for this server.")
	}

	options := make([]discord.SelectOption, 0, len(reminders))
	for _, r := range reminders {
		options = append(options, discord.SelectOption{
			Label: r.Label(),
			Value: strconv.FormatInt(r.ID, 10),
		})
	}

	return &discord.InteractionResponse{
		Type: discord.ResponseTypeMessage,
		Data: &discord.ResponseData{
			Content: "Choose a reminder to edit or delete:",
			Flags:   discord.MessageFlagEphemeral,
			Components: []discord.ActionRow{discord.NewActionRow(discord.Component{
				Type:        discord.ComponentTypeSelectMenu,
				CustomID:    "edit:pick",
				Placeholder: "Select a reminder to manage...",
				Options:     options,
			})},
		},
	}
}

// handleEditAction routes the per-reminder management actions. The arg is
// the reminder ID, except for "pick" where the ID arrives as the select
// menu value.
func (h *Interactions) handleEditAction(ctx context.Context, in *discord.Interaction, action, arg string) *discord.InteractionResponse {
	switch action {
	case "pick":
		return h.handleEditPick(ctx, in)
	case "edit":
		return h.handleEditOpen(ctx, arg)
	case "details":
		return h.handleEditSubmit(ctx, in, arg)
	case "del":
		return h.handleEditDelete(ctx, in, arg)
	}

	return discord.EphemeralMessage("This control is no longer active.")
}

func (h *Interactions) handleEditPick(ctx context.Context, in *discord.Interaction) *discord.InteractionResponse {
	reminder, resp := h.reminderByID(ctx, selectedValue(in))
	if resp != nil {
		return resp
	}

	return &discord.InteractionResponse{
		Type: discord.ResponseTypeMessage,
		Data: &discord.ResponseData{
			Content: fmt.Sprintf("Managing: **%s** (%s UTC)", reminder.EventName, reminder.TargetTime),
			Flags:   discord.MessageFlagEphemeral,
			Components: []discord.ActionRow{discord.NewActionRow(
				discord.Component{
					Type:     discord.ComponentTypeButton,
					Style:    discord.ButtonStylePrimary,
					Label:    "Edit Details",
					CustomID: fmt.Sprintf("edit:edit:%d", reminder.ID),
				},
				discord.Component{
					Type:     discord.ComponentTypeButton,
					Style:    discord.ButtonStyleDanger,
					Label:    "Delete",
					CustomID: fmt.Sprintf("edit:del:%d", reminder.ID),
				},
			)},
		},
	}
}

// handleEditOpen responds with the edit form pre-filled with the
// reminder's current name and time.
func (h *Interactions) handleEditOpen(ctx context.Context, arg string) *discord.InteractionResponse {
	reminder, resp := h.reminderByID(ctx, arg)
	if resp != nil {
		return resp
	}

	required := true
	return &discord.InteractionResponse{
		Type: discord.ResponseTypeModal,
		Data: &discord.ResponseData{
			CustomID: fmt.Sprintf("edit:details:%d", reminder.ID),
			Title:    "Edit Reminder",
			Components: []discord.ActionRow{
				discord.NewActionRow(discord.Component{
					Type:      discord.ComponentTypeTextInput,
					Style:     1,
					CustomID:  fieldEventName,
					Label:     "Event Name",
					Value:     reminder.EventName,
					Required:  &required,
					MaxLength: models.MaxEventNameLength,
				}),
				discord.NewActionRow(discord.Component{
					Type:      discord.ComponentTypeTextInput,
					Style:     1,
					CustomID:  fieldTargetTime,
					Label:     "Time (HH:MM UTC)",
					Value:     reminder.TargetTime,
					Required:  &required,
					MinLength: 5,
					MaxLength: 5,
				}),
			},
		},
	}
}

func (h *Interactions) handleEditSubmit(ctx context.Context, in *discord.Interaction, arg string) *discord.InteractionResponse {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return discord.EphemeralMessage("This control is no longer active.")
	}

	updated, err := h.svc.UpdateReminderDetails(ctx, id,
		in.TextInputValue(fieldEventName),
		in.TextInputValue(fieldTargetTime),
	)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return discord.EphemeralMessage("That reminder no longer exists.")
		}
		// Validation problems carry a user-facing explanation; storage
		// problems get a generic failure.
		var vErr *models.ValidationError
		if errors.As(err, &vErr) {
			return discord.EphemeralMessage(vErr.Error())
		}
		h.logger.WithError(err).WithField("reminder_id", id).Error("Failed to update reminder")
		return discord.EphemeralMessage("Failed to update reminder.")
	}

	return discord.EphemeralMessage(fmt.Sprintf("Updated **%s** to **%s UTC**.", updated.EventName, updated.TargetTime))
}

func (h *Interactions) handleEditDelete(ctx context.Context, in *discord.Interaction, arg string) *discord.InteractionResponse {
	reminder, resp := h.reminderByID(ctx, arg)
	if resp != nil {
		return resp
	}

	if err := h.svc.DeleteReminder(ctx, reminder.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return discord.EphemeralMessage("That reminder no longer exists.")
		}
		h.logger.WithError(err).WithField("reminder_id", reminder.ID).Error("Failed to delete reminder")
		return discord.EphemeralMessage("Failed to delete reminder.")
	}

	h.logger.WithFields(logrus.Fields{
		"reminder_id": reminder.ID,
		"user_id":     in.Member.User.ID,
	}).Info("Reminder deleted via edit flow")

	return discord.EphemeralMessage(fmt.Sprintf("Deleted reminder: **%s**", reminder.EventName))
}

// reminderByID resolves a reminder from a string ID, producing the
// user-facing error response when it cannot.
func (h *Interactions) reminderByID(ctx context.Context, raw string) (*models.Reminder, *discord.InteractionResponse) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, discord.EphemeralMessage("This control is no longer active.")
	}

	reminder, err := h.svc.GetReminder(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, discord.EphemeralMessage("That reminder no longer exists.")
		}
		h.logger.WithError(err).WithField("reminder_id", id).Error("Failed to load reminder")
		return nil, discord.EphemeralMessage("Could not load that reminder. Please try again.")
	}

	return reminder, nil
}
