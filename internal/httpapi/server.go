package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"

	"github.com/goliatone/go-statuspage/internal/commands"
	"github.com/goliatone/go-statuspage/internal/statuspage"
	"github.com/goliatone/go-statuspage/pkg/auth"
	"github.com/goliatone/go-statuspage/pkg/interfaces/logger"
	"github.com/goliatone/go-statuspage/pkg/realtime"
)

// Dependencies groups what the HTTP surface needs.
type Dependencies struct {
	StatusPage   *statuspage.Service
	Commands     *commands.Catalog
	Tokens       *auth.Tokens
	Registry     *realtime.Registry
	Origins      []string
	SendBuffer   int
	PingInterval time.Duration
	Logger       logger.Logger
}

// Server exposes the status page over HTTP and the realtime feed over
// WebSocket.
type Server struct {
	svc          *statuspage.Service
	commands     *commands.Catalog
	tokens       *auth.Tokens
	registry     *realtime.Registry
	origins      []string
	sendBuffer   int
	pingInterval time.Duration
	logger       logger.Logger
	wsLog        router.Logger
}

// New validates dependencies and applies defaults.
func New(deps Dependencies) (*Server, error) {
	if deps.StatusPage == nil {
		return nil, errors.New("httpapi: statuspage service is required")
	}
	if deps.Commands == nil {
		return nil, errors.New("httpapi: command catalog is required")
	}
	if deps.Tokens == nil {
		return nil, errors.New("httpapi: token verifier is required")
	}
	if deps.Registry == nil {
		return nil, errors.New("httpapi: realtime registry is required")
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	if len(deps.Origins) == 0 {
		deps.Origins = []string{"*"}
	}
	return &Server{
		svc:          deps.StatusPage,
		commands:     deps.Commands,
		tokens:       deps.Tokens,
		registry:     deps.Registry,
		origins:      deps.Origins,
		sendBuffer:   deps.SendBuffer,
		pingInterval: deps.PingInterval,
		logger:       deps.Logger,
		wsLog:        newRouterLogger(deps.Logger.With(logger.F("component", "websocket"))),
	}, nil
}

// NewFiberServer builds the go-router fiber adapter with CORS applied.
func NewFiberServer(appName string, origins []string) router.Server[*fiber.App] {
	srv := router.NewFiberAdapter(func(*fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			AppName:               appName,
			DisableStartupMessage: true,
		}))
	})
	allow := "*"
	if len(origins) > 0 {
		allow = strings.Join(origins, ",")
	}
	srv.WrappedRouter().Use(cors.New(cors.Config{
		AllowOrigins: allow,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	return srv
}

// actorHandler is a route that runs on behalf of an authenticated user.
type actorHandler func(c router.Context, actor auth.Actor) error

// authed resolves the bearer token into an actor before calling fn.
func (s *Server) authed(fn actorHandler) router.HandlerFunc {
	return func(c router.Context) error {
		actor, err := s.tokens.Authenticate(c.Header("Authorization"))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
		}
		return fn(c, actor)
	}
}

// Health reports liveness and the number of live subscribers.
func (s *Server) Health(c router.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":      "ok",
		"subscribers": s.registry.Len(),
	})
}

func pathID(c router.Context, name string) (uuid.UUID, error) {
	return statuspage.ParseID(name, c.Param(name, ""))
}

func optionalID(raw, field string) (uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return uuid.Nil, nil
	}
	return statuspage.ParseID(field, raw)
}

func queryInt(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return n
}

// queryTime parses an RFC 3339 query value; blank yields the zero time.
func queryTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func ok(c router.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}
