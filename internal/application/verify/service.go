package verify

import (
	"context"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/discord-verifier/internal/config"
	"github.com/discord-verifier/internal/domain"
	"github.com/discord-verifier/internal/infrastructure/ipapi"
	"github.com/discord-verifier/internal/infrastructure/webhook"
	"github.com/discord-verifier/internal/pkg/agent"
	"github.com/discord-verifier/internal/pkg/id"
	"github.com/discord-verifier/internal/store"
)

// Runtime is the submit-and-forget hand-off into the event-driven domain.
type Runtime interface {
	Submit(name string, fn func()) bool
	Ready() bool
}

// Pool runs blocking collaborator calls off both the request thread and the
// event loop.
type Pool interface {
	TrySubmit(name string, fn func()) bool
}

// Gateway is the platform surface the verification side effects need. Every
// method must only be called from the event runtime.
type Gateway interface {
	Connected() bool
	BotUser() string
	SendChannelEmbed(channelID string, embed *discordgo.MessageEmbed) error
	GrantRole(guildID, userID, roleID string) error
	SendDirectMessage(userID, content string) error
}

// Service is the verification bridge: it consumes tokens on behalf of
// request threads and fans the result out to the audit channel, the webhook,
// the role grant and the member DM without making any caller wait.
type Service interface {
	// RedeemToken consumes the token and answers immediately; side effects
	// are scheduled, not awaited.
	RedeemToken(ctx context.Context, token, clientIP, userAgent string) domain.RedeemResult

	// LogPageVisit records a page visit. Fire-and-forget: it never fails
	// from the caller's point of view.
	LogPageVisit(clientIP, userAgent, path string)

	// Status reports the bot connection state and configured identifiers.
	Status() domain.BotStatus
}

type ServiceDeps struct {
	Config   *config.Config
	Logger   *slog.Logger
	Tokens   store.TokenStore
	Runtime  Runtime
	Pool     Pool
	Gateway  Gateway
	Enricher ipapi.Enricher
	Webhook  webhook.Dispatcher
}

type service struct {
	cfg      *config.Config
	log      *slog.Logger
	tokens   store.TokenStore
	rt       Runtime
	pool     Pool
	gw       Gateway
	enricher ipapi.Enricher
	webhook  webhook.Dispatcher
}

func NewService(deps ServiceDeps) Service {
	return &service{
		cfg:      deps.Config,
		log:      deps.Logger,
		tokens:   deps.Tokens,
		rt:       deps.Runtime,
		pool:     deps.Pool,
		gw:       deps.Gateway,
		enricher: deps.Enricher,
		webhook:  deps.Webhook,
	}
}

func (s *service) RedeemToken(_ context.Context, token, clientIP, userAgent string) domain.RedeemResult {
	rec, ok := s.tokens.Redeem(strings.TrimSpace(token))
	if !ok {
		return domain.RedeemResult{Success: false, Message: "Token invalid or already used"}
	}

	s.log.Info("verification completed",
		"username", rec.Username, "user_id", rec.UserID, "ip", clientIP)

	s.pool.TrySubmit("verification-log", func() {
		s.fanOutVerification(clientIP, userAgent, rec)
	})

	return domain.RedeemResult{
		Success:  true,
		Message:  "Verification successful!",
		UserData: &rec,
	}
}

func (s *service) LogPageVisit(clientIP, userAgent, path string) {
	s.pool.TrySubmit("visit-log", func() {
		s.fanOutVisit(clientIP, userAgent, path)
	})
}

func (s *service) Status() domain.BotStatus {
	return domain.BotStatus{
		Success:        true,
		BotConnected:   s.gw.Connected() && s.rt.Ready(),
		BotUser:        s.gw.BotUser(),
		GuildID:        s.cfg.GuildID,
		VerifiedRoleID: s.cfg.VerifiedRoleID,
		LogChannelID:   s.cfg.LogChannelID,
	}
}

// fanOutVisit runs on a pool worker: enrichment and the webhook POST may
// block on network I/O, the channel post rejoins the event runtime.
func (s *service) fanOutVisit(clientIP, userAgent, path string) {
	osName, browser := agent.Detect(userAgent)
	vr := domain.VisitRecord{
		ID:        id.New(),
		IP:        clientIP,
		UserAgent: userAgent,
		Path:      path,
		OS:        osName,
		Browser:   browser,
		Info:      s.enricher.Lookup(context.Background(), clientIP),
	}

	if s.webhook.Configured() {
		if err := s.webhook.Send(context.Background(), visitWebhookPayload(vr)); err != nil {
			s.log.Warn("visit webhook not delivered", "record_id", vr.ID, "err", err)
		}
	}

	if s.cfg.LogChannelID == "" {
		return
	}
	s.rt.Submit("visit-channel-log", func() {
		if err := s.gw.SendChannelEmbed(s.cfg.LogChannelID, visitChannelEmbed(vr)); err != nil {
			s.log.Warn("visit log not delivered to channel", "record_id", vr.ID, "err", err)
		}
	})
}

// fanOutVerification runs on a pool worker; the role grant, channel embed
// and congratulation DM run as one scheduled unit on the event runtime.
func (s *service) fanOutVerification(clientIP, userAgent string, rec domain.PendingVerification) {
	osName, browser := agent.Detect(userAgent)
	vr := domain.VerificationRecord{
		ID:        id.New(),
		IP:        clientIP,
		UserAgent: userAgent,
		OS:        osName,
		Browser:   browser,
		Info:      s.enricher.Lookup(context.Background(), clientIP),
		User:      rec,
	}

	if s.webhook.Configured() {
		if err := s.webhook.Send(context.Background(), verificationWebhookPayload(vr)); err != nil {
			s.log.Warn("verification webhook not delivered", "record_id", vr.ID, "err", err)
		}
	}

	s.rt.Submit("verification-effects", func() { s.applyVerificationEffects(vr) })
}

// applyVerificationEffects runs on the event runtime: audit embed, role
// grant, completion DM. Each step degrades independently; the HTTP caller
// was already answered.
func (s *service) applyVerificationEffects(vr domain.VerificationRecord) {
	if s.cfg.LogChannelID != "" {
		if err := s.gw.SendChannelEmbed(s.cfg.LogChannelID, verificationChannelEmbed(vr)); err != nil {
			s.log.Warn("verification log not delivered to channel", "record_id", vr.ID, "err", err)
		}
	} else {
		s.log.Info("log channel not configured, skipping channel log", "record_id", vr.ID)
	}

	if s.cfg.GuildID == "" || s.cfg.VerifiedRoleID == "" {
		s.log.Warn("verified role not configured, skipping role grant", "user_id", vr.User.UserID)
		return
	}
	if err := s.gw.GrantRole(s.cfg.GuildID, vr.User.UserID, s.cfg.VerifiedRoleID); err != nil {
		s.log.Warn("role grant skipped", "user_id", vr.User.UserID, "err", err)
		return
	}
	s.log.Info("verified role granted", "user_id", vr.User.UserID)

	if err := s.gw.SendDirectMessage(vr.User.UserID,
		"🎉 Verification complete! You now have access to the server."); err != nil {
		s.log.Warn("completion DM not delivered", "user_id", vr.User.UserID, "err", err)
	}
}
