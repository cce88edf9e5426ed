package console

import (
	"context"
	"fmt"

	"github.com/goliatone/go-statuspage/pkg/adapters"
	"github.com/goliatone/go-statuspage/pkg/interfaces/logger"
)

// Adapter writes emails to the configured logger instead of sending them.
// It is the default provider for local development.
type Adapter struct {
	name string
	base adapters.BaseAdapter
	caps adapters.Capability
	opts Options
}

type Option func(*Adapter)

// Options tweak console output.
type Options struct {
	Structured bool // emit fields instead of a formatted line
	ShowHTML   bool
}

// WithName overrides the adapter provider name (defaults to "console").
func WithName(name string) Option {
	return func(a *Adapter) {
		if name != "" {
			a.name = name
		}
	}
}

// WithStructured enables structured logging mode.
func WithStructured(enabled bool) Option {
	return func(a *Adapter) {
		a.opts.Structured = enabled
	}
}

// WithHTML prints the HTML body instead of the text body.
func WithHTML(enabled bool) Option {
	return func(a *Adapter) {
		a.opts.ShowHTML = enabled
	}
}

// New constructs a console adapter.
func New(l logger.Logger, opts ...Option) *Adapter {
	adapter := &Adapter{
		name: "console",
		base: adapters.NewBaseAdapter(l),
		caps: adapters.Capability{
			Name:     "console",
			Channels: []string{adapters.ChannelEmail},
			Formats:  []string{"text/plain", "text/html"},
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(adapter)
		}
	}
	return adapter
}

// Name implements adapters.Messenger.
func (a *Adapter) Name() string {
	return a.name
}

// Capabilities implements adapters.Messenger.
func (a *Adapter) Capabilities() adapters.Capability {
	return a.caps
}

// Send logs the rendered message.
func (a *Adapter) Send(ctx context.Context, msg adapters.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	format := "plain"
	body := msg.Text
	if a.opts.ShowHTML && msg.HTML != "" {
		format = "html"
		body = msg.HTML
	}

	if a.opts.Structured {
		a.base.Logger().Info("console delivery",
			logger.Field{Key: "to", Value: msg.To},
			logger.Field{Key: "subject", Value: msg.Subject},
			logger.Field{Key: "locale", Value: msg.Locale},
			logger.Field{Key: "format", Value: format},
			logger.Field{Key: "body", Value: body},
		)
	} else {
		a.base.Logger().Info(fmt.Sprintf("[console][%s] subject=%s to=%s body=%s", format, msg.Subject, msg.To, body))
	}
	a.base.LogSuccess(a.name, msg)
	return nil
}
