package auth

import (
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/christopher-deriv/discord-reminders/pkg/discord"
)

// Checker decides whether a guild member may manage reminders. A member
// qualifies through the administrator permission or through membership in
// one of the allow-listed roles. The allow-list is fixed at construction
// time; there is no ambient mutable configuration.
type Checker struct {
	allowedRoleIDs map[string]struct{}
	logger         *logrus.Logger
}

// NewChecker creates a Checker for the given authorized role IDs.
func NewChecker(allowedRoleIDs []string, logger *logrus.Logger) *Checker {
	allowed := make(map[string]struct{}, len(allowedRoleIDs))
	for _, id := range allowedRoleIDs {
		allowed[id] = struct{}{}
	}
	return &Checker{allowedRoleIDs: allowed, logger: logger}
}

// Allowed reports whether the member may manage reminders.
func (c *Checker) Allowed(member discord.Member) bool {
	perms, err := strconv.ParseInt(member.Permissions, 10, 64)
	if err == nil && perms&discord.PermissionAdministrator != 0 {
		c.logger.WithFields(logrus.Fields{
			"user_id":  member.User.ID,
			"username": member.User.Username,
		}).Info("Authorized via administrator permission")
		return true
	}

	for _, roleID := range member.Roles {
		if _, ok := c.allowedRoleIDs[roleID]; ok {
			c.logger.WithFields(logrus.Fields{
				"user_id": member.User.ID,
				"role_id": roleID,
			}).Info("Authorized via role match")
			return true
		}
	}

	c.logger.WithFields(logrus.Fields{
		"user_id":  member.User.ID,
		"username": member.User.Username,
	}).Warn("Unauthorized reminder management attempt")
	return false
}
