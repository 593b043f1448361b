package discord

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/discord-verifier/internal/config"
	"github.com/discord-verifier/internal/domain"
	"github.com/discord-verifier/internal/runtime"
)

// MemberJoin is the platform-neutral "member joined" event handed to the
// application layer.
type MemberJoin struct {
	GuildID  string
	UserID   string
	Username string
	JoinedAt time.Time
}

// TextChannel describes one guild text channel in default (position) order.
type TextChannel struct {
	ID      string
	Name    string
	CanSend bool
}

// Gateway owns the discordgo session. All session operations are only valid
// from the event runtime's loop; the gateway's own event handlers cross onto
// it before touching application state.
type Gateway struct {
	log *slog.Logger
	cfg *config.Config
	rt  *runtime.Runtime

	session   *discordgo.Session
	connected atomic.Bool

	onMemberJoin func(MemberJoin)
}

// NewGateway constructs the gateway. With an empty bot token the gateway
// stays disconnected and every platform operation returns ErrNotConnected;
// the HTTP surface keeps serving regardless.
func NewGateway(log *slog.Logger, cfg *config.Config, rt *runtime.Runtime) (*Gateway, error) {
	g := &Gateway{log: log, cfg: cfg, rt: rt}
	if cfg.BotToken == "" {
		log.Warn("BOT_TOKEN not configured, bot features disabled")
		return g, nil
	}

	s, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages

	s.AddHandler(g.onReady)
	s.AddHandler(g.onDisconnect)
	s.AddHandler(g.onGuildMemberAdd)

	g.session = s
	return g, nil
}

// OnMemberJoin registers the application callback invoked, on the runtime
// loop, for every member-joined event. Must be called before Open.
func (g *Gateway) OnMemberJoin(fn func(MemberJoin)) {
	g.onMemberJoin = fn
}

// Open connects to the Discord gateway. An authentication failure is
// surfaced to the caller so it can be logged distinctly; it is not fatal to
// the process.
func (g *Gateway) Open() error {
	if g.session == nil {
		return domain.ErrNotConnected
	}
	if err := g.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	return nil
}

// Close tears down the session, if any.
func (g *Gateway) Close() error {
	if g.session == nil {
		return nil
	}
	g.connected.Store(false)
	return g.session.Close()
}

func (g *Gateway) onReady(s *discordgo.Session, _ *discordgo.Ready) {
	g.connected.Store(true)
	g.rt.SetReady(true)
	g.log.Info("bot connected", "bot_user", s.State.User.String())

	if g.cfg.LogChannelID == "" {
		return
	}
	g.rt.Submit("startup-notice", func() {
		_, err := s.ChannelMessageSendEmbed(g.cfg.LogChannelID, &discordgo.MessageEmbed{
			Title:       "🤖 Bot Started",
			Description: "The logging system is active and ready to detect visits.",
			Color:       0x00FF00,
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			g.log.Warn("startup notice not delivered", "channel_id", g.cfg.LogChannelID, "err", err)
		}
	})
}

func (g *Gateway) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	g.connected.Store(false)
	g.rt.SetReady(false)
	g.log.Warn("bot disconnected")
}

func (g *Gateway) onGuildMemberAdd(_ *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if g.onMemberJoin == nil || m.User == nil {
		return
	}
	ev := MemberJoin{
		GuildID:  m.GuildID,
		UserID:   m.User.ID,
		Username: m.User.String(),
		JoinedAt: m.JoinedAt,
	}
	g.rt.Submit("member-join", func() { g.onMemberJoin(ev) })
}

// Connected reports whether the session is open and ready.
func (g *Gateway) Connected() bool {
	return g.session != nil && g.connected.Load()
}

// BotUser returns the bot account's tag, or "" before the session is ready.
func (g *Gateway) BotUser() string {
	if g.session == nil || g.session.State.User == nil {
		return ""
	}
	return g.session.State.User.String()
}

// GuildName resolves the guild's display name for message content, or "".
func (g *Gateway) GuildName(guildID string) string {
	if g.session == nil {
		return ""
	}
	if gd, err := g.session.State.Guild(guildID); err == nil {
		return gd.Name
	}
	gd, err := g.session.Guild(guildID)
	if err != nil {
		return ""
	}
	return gd.Name
}

// SendDirectEmbed DMs a member. A refusal to accept direct messages is
// reported as domain.ErrDMClosed so the caller can run its fallback policy.
func (g *Gateway) SendDirectEmbed(userID string, msg *discordgo.MessageSend) error {
	if g.session == nil {
		return domain.ErrNotConnected
	}
	ch, err := g.session.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("create DM channel: %w", err)
	}
	if _, err := g.session.ChannelMessageSendComplex(ch.ID, msg); err != nil {
		if isDMClosed(err) {
			return domain.ErrDMClosed
		}
		return fmt.Errorf("send DM: %w", err)
	}
	return nil
}

// SendDirectMessage DMs plain text to a member.
func (g *Gateway) SendDirectMessage(userID, content string) error {
	return g.SendDirectEmbed(userID, &discordgo.MessageSend{Content: content})
}

// TextChannels lists the guild's text channels in position order, flagging
// the ones the bot may post to.
func (g *Gateway) TextChannels(guildID string) ([]TextChannel, error) {
	if g.session == nil {
		return nil, domain.ErrNotConnected
	}
	channels, err := g.session.GuildChannels(guildID)
	if err != nil {
		return nil, fmt.Errorf("list guild channels: %w", err)
	}

	var texts []*discordgo.Channel
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildText {
			texts = append(texts, ch)
		}
	}
	sort.Slice(texts, func(i, j int) bool { return texts[i].Position < texts[j].Position })

	botID := ""
	if g.session.State.User != nil {
		botID = g.session.State.User.ID
	}
	out := make([]TextChannel, 0, len(texts))
	for _, ch := range texts {
		canSend := false
		if botID != "" {
			perms, err := g.session.State.UserChannelPermissions(botID, ch.ID)
			canSend = err == nil && perms&discordgo.PermissionSendMessages != 0
		}
		out = append(out, TextChannel{ID: ch.ID, Name: ch.Name, CanSend: canSend})
	}
	return out, nil
}

// SendChannelMessage posts to a guild channel. A non-zero deleteAfter
// schedules best-effort removal of the message once the interval elapses.
func (g *Gateway) SendChannelMessage(channelID string, msg *discordgo.MessageSend, deleteAfter time.Duration) error {
	if g.session == nil {
		return domain.ErrNotConnected
	}
	m, err := g.session.ChannelMessageSendComplex(channelID, msg)
	if err != nil {
		return fmt.Errorf("send channel message: %w", err)
	}
	if deleteAfter > 0 {
		time.AfterFunc(deleteAfter, func() {
			g.rt.Submit("expire-fallback-message", func() {
				if err := g.session.ChannelMessageDelete(channelID, m.ID); err != nil {
					g.log.Warn("fallback message cleanup failed", "channel_id", channelID, "err", err)
				}
			})
		})
	}
	return nil
}

// SendChannelEmbed posts a bare embed to a guild channel.
func (g *Gateway) SendChannelEmbed(channelID string, embed *discordgo.MessageEmbed) error {
	if g.session == nil {
		return domain.ErrNotConnected
	}
	if _, err := g.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		return fmt.Errorf("send channel embed: %w", err)
	}
	return nil
}

// GrantRole resolves the member and role and assigns the role. Either one
// failing to resolve is an error the caller treats as a skipped grant, not a
// failed verification.
func (g *Gateway) GrantRole(guildID, userID, roleID string) error {
	if g.session == nil {
		return domain.ErrNotConnected
	}
	if _, err := g.member(guildID, userID); err != nil {
		return fmt.Errorf("resolve member %s: %w", userID, err)
	}
	if _, err := g.session.State.Role(guildID, roleID); err != nil {
		if !g.roleExists(guildID, roleID) {
			return fmt.Errorf("resolve role %s: %w", roleID, err)
		}
	}
	if err := g.session.GuildMemberRoleAdd(guildID, userID, roleID); err != nil {
		return fmt.Errorf("grant role: %w", err)
	}
	return nil
}

func (g *Gateway) member(guildID, userID string) (*discordgo.Member, error) {
	if m, err := g.session.State.Member(guildID, userID); err == nil {
		return m, nil
	}
	return g.session.GuildMember(guildID, userID)
}

func (g *Gateway) roleExists(guildID, roleID string) bool {
	roles, err := g.session.GuildRoles(guildID)
	if err != nil {
		return false
	}
	for _, r := range roles {
		if r.ID == roleID {
			return true
		}
	}
	return false
}

// isDMClosed reports whether the REST error means the member refuses DMs.
func isDMClosed(err error) bool {
	var rerr *discordgo.RESTError
	return errors.As(err, &rerr) &&
		rerr.Message != nil &&
		rerr.Message.Code == discordgo.ErrCodeCannotSendMessagesToThisUser
}
