package domain

import "time"

// PendingVerification is the capture-time snapshot of a member awaiting
// verification. It is keyed by an opaque single-use token in the store and
// never mutated after issue.
type PendingVerification struct {
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joined_at"`
}

// RedeemResult is returned to the HTTP caller immediately; side effects
// (role grant, DM, audit logging) run asynchronously afterwards.
type RedeemResult struct {
	Success  bool                 `json:"success"`
	Message  string               `json:"message"`
	UserData *PendingVerification `json:"user_data,omitempty"`
}

// BotStatus reports the current state of the Discord connection and the
// identifiers the verification flow is configured with.
type BotStatus struct {
	Success        bool   `json:"success"`
	BotConnected   bool   `json:"bot_connected"`
	BotUser        string `json:"bot_user,omitempty"`
	GuildID        string `json:"guild_id"`
	VerifiedRoleID string `json:"verified_role_id"`
	LogChannelID   string `json:"log_channel_id"`
}
