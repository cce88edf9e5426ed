package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-statuspage/pkg/adapters"
	"github.com/goliatone/go-statuspage/pkg/interfaces/logger"
	"github.com/goliatone/go-statuspage/pkg/options"
	"github.com/goliatone/go-statuspage/pkg/retry"
	"github.com/goliatone/go-statuspage/pkg/secrets"
)

// Dependencies wires the side channel collaborators. Channel routes through
// Messengers ("email" or "email:smtp"); a nil Policy enables email for everyone.
type Dependencies struct {
	Directory   Directory
	Renderer    *Renderer
	Messengers  *adapters.Registry
	Channel     string
	From        string
	Policy      *options.PolicyResolver
	Backoff     retry.Backoff
	MaxAttempts int
	Logger      logger.Logger
	Now         func() time.Time
	Sleep       retry.SleepFunc
}

// Report summarizes one delivery run.
type Report struct {
	Recipients int
	Sent       int
	Skipped    int
	Failed     int
}

// Service sends notices to organization members by email.
type Service struct {
	directory   Directory
	renderer    *Renderer
	messengers  *adapters.Registry
	channel     string
	from        string
	policy      options.PolicyResolver
	backoff     retry.Backoff
	maxAttempts int
	logger      logger.Logger
	now         func() time.Time
	sleep       retry.SleepFunc
}

var _ Notifier = (*Service)(nil)

// New validates dependencies and applies defaults.
func New(deps Dependencies) (*Service, error) {
	if deps.Directory == nil {
		return nil, ErrDirectoryRequired
	}
	if deps.Renderer == nil {
		return nil, ErrRendererRequired
	}
	if deps.Messengers == nil {
		return nil, ErrNoMessenger
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	if deps.Policy == nil {
		policy := options.NewPolicyResolver(options.PolicyDefaults{Enabled: true})
		deps.Policy = &policy
	}
	if deps.Backoff == nil {
		deps.Backoff = retry.DefaultBackoff()
	}
	if deps.MaxAttempts <= 0 {
		deps.MaxAttempts = 3
	}
	if strings.TrimSpace(deps.Channel) == "" {
		deps.Channel = adapters.ChannelEmail
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Sleep == nil {
		deps.Sleep = retry.Sleep
	}
	return &Service{
		directory:   deps.Directory,
		renderer:    deps.Renderer,
		messengers:  deps.Messengers,
		channel:     deps.Channel,
		from:        deps.From,
		policy:      *deps.Policy,
		backoff:     deps.Backoff,
		maxAttempts: deps.MaxAttempts,
		logger:      deps.Logger,
		now:         deps.Now,
		sleep:       deps.Sleep,
	}, nil
}

// Notify delivers notice and logs failures. It never panics or returns an error.
func (s *Service) Notify(ctx context.Context, notice Notice) {
	report, err := s.Deliver(ctx, notice)
	fields := []logger.Field{
		logger.F("org_id", notice.OrgID),
		logger.F("entity_type", notice.EntityType),
		logger.F("action", notice.Action),
		logger.F("recipients", report.Recipients),
		logger.F("sent", report.Sent),
		logger.F("skipped", report.Skipped),
		logger.F("failed", report.Failed),
	}
	if err != nil {
		s.logger.Error("notification delivery failed", append(fields, logger.F("error", err))...)
		return
	}
	if report.Recipients == 0 {
		s.logger.Debug("notification skipped, no recipients", fields...)
		return
	}
	s.logger.Info("notification delivered", fields...)
}

// Deliver sends notice to every member of its organization except the actor.
// Per-recipient failures are counted in the report; the error covers
// failures that stop the whole run.
func (s *Service) Deliver(ctx context.Context, notice Notice) (Report, error) {
	if err := notice.Validate(); err != nil {
		return Report{}, err
	}
	messenger, err := s.messengers.Route(s.channel)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %s", ErrNoMessenger, s.channel)
	}

	audience, err := s.directory.Audience(ctx, notice.OrgID)
	if err != nil {
		return Report{}, err
	}
	if strings.TrimSpace(notice.OrgName) == "" {
		notice.OrgName = audience.OrgName
	}

	recipients := Recipients(audience.Members, notice.ActorID)
	report := Report{Recipients: len(recipients)}
	if len(recipients) == 0 {
		return report, nil
	}

	rendered := make(map[string]Content)
	now := s.now()
	for _, rcpt := range recipients {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		policy, err := s.policy.Resolve(audience.OrgSettings, rcpt.Settings)
		if err != nil {
			s.logger.Warn("notification policy resolve failed",
				logger.F("to", secrets.MaskEmail(rcpt.Email)),
				logger.F("error", err),
			)
			policy = options.EmailPolicy{Enabled: true, Locale: rcpt.Locale}
		}
		if !policy.Allows(notice.EntityType, now) {
			report.Skipped++
			continue
		}

		locale := firstNonBlank(rcpt.Locale, policy.Locale)
		content, ok := rendered[locale]
		if !ok {
			content, err = s.renderer.Render(notice, locale)
			if err != nil {
				return report, err
			}
			rendered[locale] = content
		}

		msg := adapters.Message{
			Channel: adapters.ChannelEmail,
			Subject: content.Subject,
			Text:    content.Text,
			HTML:    content.HTML,
			From:    s.from,
			To:      rcpt.Email,
			Locale:  content.Locale,
			Metadata: map[string]any{
				"org_id":      notice.OrgID,
				"entity_type": notice.EntityType,
				"action":      notice.Action,
			},
		}
		if err := s.sendWithRetry(ctx, messenger, msg); err != nil {
			report.Failed++
			continue
		}
		report.Sent++
	}
	return report, nil
}

func (s *Service) sendWithRetry(ctx context.Context, messenger adapters.Messenger, msg adapters.Message) error {
	policy := retry.Policy{
		Attempts: s.maxAttempts,
		Backoff:  s.backoff,
		Sleep:    s.sleep,
		OnError: func(attempt int, err error) {
			s.logger.Warn("notification send attempt failed",
				logger.F("adapter", messenger.Name()),
				logger.F("to", secrets.MaskEmail(msg.To)),
				logger.F("attempt", attempt),
				logger.F("error", err),
			)
		},
	}
	return retry.Do(ctx, policy, func(attempt int) error {
		msg.Attempt = attempt
		return messenger.Send(ctx, msg)
	})
}

// Recipients filters members down to addressable users other than actorID.
// Duplicate addresses are sent once.
func Recipients(members []Recipient, actorID string) []Recipient {
	actorID = strings.TrimSpace(actorID)
	seen := make(map[string]struct{}, len(members))
	out := make([]Recipient, 0, len(members))
	for _, m := range members {
		if actorID != "" && m.UserID == actorID {
			continue
		}
		email := strings.ToLower(strings.TrimSpace(m.Email))
		if email == "" {
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, m)
	}
	return out
}
