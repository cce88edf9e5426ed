package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrSecretRequired = errors.New("auth: signing secret is required")
	ErrInvalidToken   = errors.New("auth: invalid token")
	ErrMissingToken   = errors.New("auth: missing bearer token")
)

// Actor is the authenticated caller of a mutating operation.
type Actor struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
}

// DisplayName returns the name, falling back to the email and then the id.
func (a Actor) DisplayName() string {
	if n := strings.TrimSpace(a.Name); n != "" {
		return n
	}
	if e := strings.TrimSpace(a.Email); e != "" {
		return e
	}
	return a.UserID
}

// Config controls token signing.
type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
	Leeway time.Duration
}

type claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 bearer tokens. The subject claim carries
// the user id.
type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	leeway time.Duration
	now    func() time.Time
}

func NewTokens(cfg Config) (*Tokens, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, ErrSecretRequired
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Leeway < 0 {
		cfg.Leeway = 0
	}
	return &Tokens{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		leeway: cfg.Leeway,
		now:    time.Now,
	}, nil
}

// Issue signs a token for actor.
func (t *Tokens) Issue(actor Actor) (string, error) {
	if strings.TrimSpace(actor.UserID) == "" {
		return "", fmt.Errorf("auth: user id is required")
	}
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: actor.Email,
		Name:  actor.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.UserID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	})
	return token.SignedString(t.secret)
}

// Parse verifies raw and returns the actor it names.
func (t *Tokens) Parse(raw string) (Actor, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(t.leeway),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}
	parsed, err := jwt.ParseWithClaims(raw, &claims{}, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...)
	if err != nil {
		return Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid || strings.TrimSpace(c.Subject) == "" {
		return Actor{}, ErrInvalidToken
	}
	return Actor{UserID: c.Subject, Email: c.Email, Name: c.Name}, nil
}

// Authenticate extracts and verifies the bearer token in an Authorization header.
func (t *Tokens) Authenticate(header string) (Actor, error) {
	raw, ok := BearerToken(header)
	if !ok {
		return Actor{}, ErrMissingToken
	}
	return t.Parse(raw)
}

// BearerToken returns the token of a "Bearer <token>" header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

type actorKey struct{}

// WithActor stores actor on ctx.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor stored by WithActor.
func ActorFrom(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}
