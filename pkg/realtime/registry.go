package realtime

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/goliatone/go-statuspage/pkg/interfaces/logger"
)

var (
	// ErrInvalidScope rejects a connection that carries no organization.
	ErrInvalidScope = errors.New("realtime: organization scope is required")
	// ErrNilConnection rejects a nil connection handle.
	ErrNilConnection = errors.New("realtime: connection is required")
)

// Conn is a live, bidirectional client channel. ID must be unique for the
// lifetime of the process; Send may be called from any goroutine.
type Conn interface {
	ID() string
	Send(ctx context.Context, payload []byte) error
	Close() error
}

type entry struct {
	conn  Conn
	orgID string
}

// Registry tracks live connections and the organization each one watches.
type Registry struct {
	mu     sync.RWMutex
	conns  map[string]entry
	logger logger.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(lgr logger.Logger) *Registry {
	if lgr == nil {
		lgr = &logger.Nop{}
	}
	return &Registry{
		conns:  make(map[string]entry),
		logger: lgr,
	}
}

// Register adds conn under orgID. Registering an already known connection
// moves it to the new scope.
func (r *Registry) Register(conn Conn, orgID string) error {
	if conn == nil {
		return ErrNilConnection
	}
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return ErrInvalidScope
	}

	r.mu.Lock()
	r.conns[conn.ID()] = entry{conn: conn, orgID: orgID}
	total := len(r.conns)
	r.mu.Unlock()

	r.logger.Debug("connection registered",
		logger.Field{Key: "conn", Value: conn.ID()},
		logger.Field{Key: "org_id", Value: orgID},
		logger.Field{Key: "total", Value: total},
	)
	return nil
}

// Unregister removes conn. It reports whether an entry was removed so callers
// can run close-once cleanup; removing an unknown connection is a no-op.
func (r *Registry) Unregister(conn Conn) bool {
	if conn == nil {
		return false
	}
	id := conn.ID()

	r.mu.Lock()
	_, ok := r.conns[id]
	if ok {
		delete(r.conns, id)
	}
	total := len(r.conns)
	r.mu.Unlock()

	if ok {
		r.logger.Debug("connection unregistered",
			logger.Field{Key: "conn", Value: id},
			logger.Field{Key: "total", Value: total},
		)
	}
	return ok
}

// MembersOf returns a snapshot of the connections scoped to orgID. The slice
// is owned by the caller.
func (r *Registry) MembersOf(orgID string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var members []Conn
	for _, e := range r.conns {
		if e.orgID == orgID {
			members = append(members, e.conn)
		}
	}
	return members
}

// ScopeOf returns the organization conn is registered under.
func (r *Registry) ScopeOf(conn Conn) (string, bool) {
	if conn == nil {
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[conn.ID()]
	return e.orgID, ok
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Counts returns live connections per organization.
func (r *Registry) Counts() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]int)
	for _, e := range r.conns {
		out[e.orgID]++
	}
	return out
}

// CloseAll unregisters and closes every connection (process shutdown).
func (r *Registry) CloseAll() {
	r.mu.Lock()
	conns := r.conns
	r.conns = make(map[string]entry)
	r.mu.Unlock()

	for _, e := range conns {
		_ = e.conn.Close()
	}
}
