package aws_ses

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/goliatone/go-statuspage/pkg/adapters"
	"github.com/goliatone/go-statuspage/pkg/interfaces/logger"
)

// Adapter delivers email via AWS SES.
type Adapter struct {
	name   string
	base   adapters.BaseAdapter
	caps   adapters.Capability
	cfg    Config
	client SESClient
}

// Config holds SES settings.
type Config struct {
	From             string
	Region           string
	Profile          string
	ConfigurationSet string
	DryRun           bool
}

type Option func(*Adapter)

// SESClient abstracts the SES client for testing.
type SESClient interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// WithName overrides the adapter provider name.
func WithName(name string) Option {
	return func(a *Adapter) {
		if strings.TrimSpace(name) != "" {
			a.name = name
		}
	}
}

// WithConfig sets the adapter configuration. A blank region keeps us-east-1.
func WithConfig(cfg Config) Option {
	return func(a *Adapter) {
		if strings.TrimSpace(cfg.Region) == "" {
			cfg.Region = a.cfg.Region
		}
		a.cfg = cfg
	}
}

// WithClient injects a custom SES client.
func WithClient(c SESClient) Option {
	return func(a *Adapter) {
		if c != nil {
			a.client = c
		}
	}
}

// New constructs the SES adapter. The AWS client is created lazily on first send.
func New(l logger.Logger, opts ...Option) *Adapter {
	adapter := &Adapter{
		name: "aws_ses",
		base: adapters.NewBaseAdapter(l),
		caps: adapters.Capability{
			Name:     "aws_ses",
			Channels: []string{adapters.ChannelEmail},
			Formats:  []string{"text/plain", "text/html"},
		},
		cfg: Config{
			Region: "us-east-1",
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(adapter)
		}
	}
	return adapter
}

func (a *Adapter) Name() string { return a.name }

func (a *Adapter) Capabilities() adapters.Capability { return a.caps }

func (a *Adapter) ensureClient(ctx context.Context) error {
	if a.client != nil {
		return nil
	}
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(a.cfg.Region),
	}
	if a.cfg.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(a.cfg.Profile))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return fmt.Errorf("aws_ses: load config: %w", err)
	}
	a.client = ses.NewFromConfig(cfg, func(o *ses.Options) {
		o.RetryMaxAttempts = 3
	})
	return nil
}

func (a *Adapter) Send(ctx context.Context, msg adapters.Message) error {
	to := strings.TrimSpace(msg.To)
	if to == "" {
		return fmt.Errorf("aws_ses: destination required")
	}
	from := adapters.FirstNonEmpty(msg.From, a.cfg.From)
	if from == "" {
		return fmt.Errorf("aws_ses: from required")
	}
	if strings.TrimSpace(msg.Text) == "" && strings.TrimSpace(msg.HTML) == "" {
		return fmt.Errorf("aws_ses: content empty")
	}

	if a.cfg.DryRun {
		a.base.Logger().Info("aws_ses dry run, send skipped",
			logger.Field{Key: "subject", Value: msg.Subject},
		)
		a.base.LogSuccess(a.name, msg)
		return nil
	}

	if err := a.ensureClient(ctx); err != nil {
		return err
	}

	input := &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Source: aws.String(from),
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: content(msg.Text),
				Html: content(msg.HTML),
			},
		},
	}
	if cs := strings.TrimSpace(a.cfg.ConfigurationSet); cs != "" {
		input.ConfigurationSetName = aws.String(cs)
	}

	if _, err := a.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("aws_ses: send email: %w", err)
	}
	a.base.LogSuccess(a.name, msg)
	return nil
}

func content(body string) *types.Content {
	if strings.TrimSpace(body) == "" {
		return nil
	}
	return &types.Content{Data: aws.String(body), Charset: aws.String("UTF-8")}
}
