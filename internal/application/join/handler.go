package join

import (
	"errors"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/discord-verifier/internal/config"
	"github.com/discord-verifier/internal/domain"
	"github.com/discord-verifier/internal/infrastructure/discord"
	"github.com/discord-verifier/internal/pkg/link"
	"github.com/discord-verifier/internal/store"
)

// fallbackTTL is how long a fallback post survives in a guild channel before
// the bot removes it.
const fallbackTTL = 60 * time.Second

// Gateway is the minimal platform surface the join handler needs. The
// handler only runs on the event runtime, so these may be called directly.
type Gateway interface {
	GuildName(guildID string) string
	SendDirectEmbed(userID string, msg *discordgo.MessageSend) error
	TextChannels(guildID string) ([]discord.TextChannel, error)
	SendChannelMessage(channelID string, msg *discordgo.MessageSend, deleteAfter time.Duration) error
}

// Handler reacts to member-joined events: issues a token, builds the
// redemption link and delivers it DM-first with a single channel fallback.
type Handler struct {
	log    *slog.Logger
	cfg    *config.Config
	tokens store.TokenStore
	gw     Gateway
}

func NewHandler(log *slog.Logger, cfg *config.Config, tokens store.TokenStore, gw Gateway) *Handler {
	return &Handler{log: log, cfg: cfg, tokens: tokens, gw: gw}
}

// HandleMemberJoin processes one join. Every failure is logged and swallowed;
// one failed join must never take down the event loop.
func (h *Handler) HandleMemberJoin(ev discord.MemberJoin) {
	if ev.GuildID != h.cfg.GuildID {
		return
	}

	h.log.Info("new member", "username", ev.Username, "user_id", ev.UserID)

	tok, err := h.tokens.Issue(ev.UserID, ev.Username, ev.JoinedAt)
	if err != nil {
		h.log.Error("token issue failed", "user_id", ev.UserID, "err", err)
		return
	}

	redemptionLink := link.Build(h.cfg.VerificationURL, tok)
	if redemptionLink == "" {
		h.log.Warn("VERIFICATION_URL not configured, join message will carry the token only")
	}

	msg := verificationMessage(h.gw.GuildName(ev.GuildID), tok, redemptionLink)
	err = h.gw.SendDirectEmbed(ev.UserID, msg)
	if err == nil {
		h.log.Info("verification message sent via DM", "user_id", ev.UserID)
		return
	}
	if !errors.Is(err, domain.ErrDMClosed) {
		h.log.Error("verification DM failed", "user_id", ev.UserID, "err", err)
		return
	}

	h.log.Warn("member has DMs closed, trying channel fallback", "user_id", ev.UserID)
	h.fallback(ev, tok, redemptionLink)
}

// fallback posts the verification message to the first guild text channel
// that accepts it, mentioning the member, and lets the gateway remove it
// after fallbackTTL. At most one post is made.
func (h *Handler) fallback(ev discord.MemberJoin, tok, redemptionLink string) {
	channels, err := h.gw.TextChannels(ev.GuildID)
	if err != nil {
		h.log.Error("channel fallback failed, cannot list channels", "err", err)
		return
	}

	msg := verificationMessage(h.gw.GuildName(ev.GuildID), tok, redemptionLink)
	msg.Content = "<@" + ev.UserID + "> check this message to complete your verification."

	for _, ch := range channels {
		if !ch.CanSend {
			continue
		}
		if err := h.gw.SendChannelMessage(ch.ID, msg, fallbackTTL); err != nil {
			h.log.Warn("fallback post refused", "channel_id", ch.ID, "err", err)
			continue
		}
		h.log.Info("verification message posted to fallback channel",
			"user_id", ev.UserID, "channel_id", ch.ID)
		return
	}

	h.log.Error("verification message undeliverable", "user_id", ev.UserID)
}
