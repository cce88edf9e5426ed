package adapters

import (
	"strings"

	"github.com/goliatone/go-statuspage/pkg/interfaces/logger"
	"github.com/goliatone/go-statuspage/pkg/secrets"
)

// BaseAdapter provides shared helpers for simple adapters.
type BaseAdapter struct {
	logger logger.Logger
}

func NewBaseAdapter(l logger.Logger) BaseAdapter {
	if l == nil {
		l = &logger.Nop{}
	}
	return BaseAdapter{logger: l}
}

// LogSuccess records a delivery. Recipient addresses are masked.
func (b BaseAdapter) LogSuccess(name string, msg Message) {
	b.Logger().Info("adapter delivered message",
		logger.Field{Key: "adapter", Value: name},
		logger.Field{Key: "channel", Value: msg.Channel},
		logger.Field{Key: "to", Value: secrets.MaskEmail(msg.To)},
		logger.Field{Key: "attempt", Value: msg.Attempt},
	)
}

func (b BaseAdapter) LogFailure(name string, msg Message, err error) {
	b.Logger().Error("adapter delivery failed",
		logger.Field{Key: "adapter", Value: name},
		logger.Field{Key: "channel", Value: msg.Channel},
		logger.Field{Key: "to", Value: secrets.MaskEmail(msg.To)},
		logger.Field{Key: "attempt", Value: msg.Attempt},
		logger.Field{Key: "error", Value: err},
	)
}

// Logger exposes the adapter logger for structured diagnostics.
func (b BaseAdapter) Logger() logger.Logger {
	if b.logger == nil {
		return &logger.Nop{}
	}
	return b.logger
}

// FirstNonEmpty returns the first value that is not blank after trimming.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
