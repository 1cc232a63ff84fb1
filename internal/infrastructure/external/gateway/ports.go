package gateway

import (
	"context"
	"fmt"

	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION PORTS
// The client doubles as the concrete implementation of the narrow
// interfaces the application layer declares: saga.Messenger,
// command.MemberDirectory and eventhandler.Announcer. Role checks go
// through MemberRoles on every call; membership is never cached here.
// ══════════════════════════════════════════════════════════════════════════════

// OperatorRoleName is the guild role required to drive the hub.
const OperatorRoleName = "Pyrates"

// StudentsRoleName is the guild role marking enrolled students.
const StudentsRoleName = "Students"

// SendToChannel implements saga.Messenger and eventhandler.Announcer.
func (c *Client) SendToChannel(ctx context.Context, guildID shared.GuildID, channelName, content string) (shared.MessageID, error) {
	msgID, err := c.Send(ctx, SendParams{
		GuildID:     guildID.Int64(),
		ChannelName: channelName,
		Content:     content,
	})
	if err != nil {
		return 0, shared.WrapError("gateway", "SendToChannel", shared.ErrGatewaySendFailed, channelName, err)
	}
	return shared.MessageID(msgID), nil
}

// AddReaction implements saga.Messenger.
func (c *Client) AddReaction(ctx context.Context, guildID shared.GuildID, channelName string, msgID shared.MessageID, emoji string) error {
	if err := c.React(ctx, guildID.Int64(), channelName, msgID.Int64(), emoji); err != nil {
		return shared.WrapError("gateway", "AddReaction", shared.ErrExternalService, channelName, err)
	}
	return nil
}

// RoleMention implements saga.Messenger.
func (c *Client) RoleMention(ctx context.Context, guildID shared.GuildID, roleName string) (string, error) {
	mention, err := c.ResolveRole(ctx, guildID.Int64(), roleName)
	if err != nil {
		return "", shared.WrapError("gateway", "RoleMention", shared.ErrExternalService, roleName, err)
	}
	return mention, nil
}

// HasRole reports whether a guild member holds the named role.
func (c *Client) HasRole(ctx context.Context, guildID shared.GuildID, memberID int64, roleName string) (bool, error) {
	roles, err := c.MemberRoles(ctx, guildID.Int64(), memberID)
	if err != nil {
		return false, fmt.Errorf("gateway: has role %q: %w", roleName, err)
	}
	for _, r := range roles {
		if r == roleName {
			return true, nil
		}
	}
	return false, nil
}

// IsStudent implements command.MemberDirectory.
func (c *Client) IsStudent(ctx context.Context, guildID shared.GuildID, memberID shared.StudentID) (bool, error) {
	return c.HasRole(ctx, guildID, memberID.Int64(), StudentsRoleName)
}

// IsOperator reports whether the member may drive hub commands.
func (c *Client) IsOperator(ctx context.Context, guildID shared.GuildID, memberID int64) (bool, error) {
	return c.HasRole(ctx, guildID, memberID, OperatorRoleName)
}

// ══════════════════════════════════════════════════════════════════════════════
// VOICE ROSTER ADAPTER
// ══════════════════════════════════════════════════════════════════════════════

// VoiceRosterAdapter adapts the client to query.VoiceRoster. A separate
// type because the roster's member check works on raw IDs.
type VoiceRosterAdapter struct {
	client *Client
}

// NewVoiceRosterAdapter creates a roster backed by the gateway client.
func NewVoiceRosterAdapter(client *Client) *VoiceRosterAdapter {
	return &VoiceRosterAdapter{client: client}
}

// VoiceChannelMembers implements query.VoiceRoster.
func (a *VoiceRosterAdapter) VoiceChannelMembers(ctx context.Context, guildID shared.GuildID, channelName string) ([]int64, error) {
	return a.client.VoiceMembers(ctx, guildID.Int64(), channelName)
}

// IsStudent implements query.VoiceRoster.
func (a *VoiceRosterAdapter) IsStudent(ctx context.Context, guildID shared.GuildID, memberID int64) (bool, error) {
	return a.client.HasRole(ctx, guildID, memberID, StudentsRoleName)
}
