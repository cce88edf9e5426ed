package adapters

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ChannelEmail is the only outbound channel the status page notifies on.
const ChannelEmail = "email"

// Message is one rendered email addressed to a single recipient.
type Message struct {
	ID       string
	Channel  string
	Subject  string
	Text     string
	HTML     string
	From     string
	To       string
	Locale   string
	Headers  map[string]string
	Metadata map[string]any
	Attempt  int
}

// Capability describes the channels/formats supported by a messenger.
type Capability struct {
	Name     string
	Channels []string
	Formats  []string
}

// Messenger is implemented by delivery adapters (SMTP, SES, console).
type Messenger interface {
	Name() string
	Capabilities() Capability
	Send(ctx context.Context, msg Message) error
}

// ErrAdapterNotFound is returned when no messenger can satisfy a route.
var ErrAdapterNotFound = errors.New("adapters: no adapter matches route")

// Registry stores available messengers and matches channels to providers.
type Registry struct {
	mu        sync.RWMutex
	adapters  map[string]Messenger
	byChannel map[string][]Messenger
}

// NewRegistry builds a registry with the supplied messengers.
func NewRegistry(messengers ...Messenger) *Registry {
	reg := &Registry{
		adapters:  make(map[string]Messenger),
		byChannel: make(map[string][]Messenger),
	}
	for _, m := range messengers {
		reg.Register(m)
	}
	return reg
}

// Register adds a messenger, indexing by provider name and supported channels.
// Registering a provider name twice replaces the earlier messenger.
func (r *Registry) Register(m Messenger) {
	if r == nil || m == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	name := normalizeKey(m.Name())
	if name != "" {
		if prev, ok := r.adapters[name]; ok {
			r.dropLocked(prev)
		}
		r.adapters[name] = m
	}
	for _, channel := range m.Capabilities().Channels {
		key := normalizeKey(channel)
		if key == "" {
			continue
		}
		r.byChannel[key] = append(r.byChannel[key], m)
	}
}

func (r *Registry) dropLocked(m Messenger) {
	for key, list := range r.byChannel {
		kept := list[:0]
		for _, candidate := range list {
			if candidate != m {
				kept = append(kept, candidate)
			}
		}
		r.byChannel[key] = kept
	}
}

// Route locates a messenger based on a channel string such as "email:smtp".
// A bare channel resolves to the first messenger registered for it.
func (r *Registry) Route(channel string) (Messenger, error) {
	if r == nil {
		return nil, ErrAdapterNotFound
	}
	ch, provider := ParseChannel(channel)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if provider != "" {
		if adapter, ok := r.adapters[provider]; ok {
			return adapter, nil
		}
		return nil, ErrAdapterNotFound
	}
	candidates := r.byChannel[ch]
	if len(candidates) == 0 {
		return nil, ErrAdapterNotFound
	}
	return candidates[0], nil
}

// List returns all messengers registered for a logical channel.
func (r *Registry) List(channel string) []Messenger {
	if r == nil {
		return nil
	}
	ch, _ := ParseChannel(channel)
	r.mu.RLock()
	defer r.mu.RUnlock()
	candidates := r.byChannel[ch]
	out := make([]Messenger, len(candidates))
	copy(out, candidates)
	return out
}

// Describe returns a sorted human-readable summary of the registry entries.
func (r *Registry) Describe() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.adapters))
	for name, adapter := range r.adapters {
		caps := adapter.Capabilities()
		out = append(out, fmt.Sprintf("%s (%s)", name, strings.Join(caps.Channels, ",")))
	}
	sort.Strings(out)
	return out
}

// ParseChannel splits "<channel>[:provider]" into components.
func ParseChannel(value string) (channel string, provider string) {
	head, tail, found := strings.Cut(strings.TrimSpace(value), ":")
	if !found {
		return normalizeKey(head), ""
	}
	return normalizeKey(head), normalizeKey(tail)
}

func normalizeKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
