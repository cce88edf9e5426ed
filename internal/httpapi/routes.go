package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
)

// Register mounts every route on r.
func (s *Server) Register(r router.Router[*fiber.App]) {
	r.Get("/health", s.Health)
	r.WebSocket("/ws", s.wsConfig(), s.HandleWebSocket)

	public := r.Group("/public")
	public.Get("/orgs", s.PublicOrganizations)
	public.Get("/orgs/:org_id/services", s.PublicServices)
	public.Get("/orgs/:org_id/summary", s.PublicSummary)
	public.Get("/orgs/:org_id/timeline", s.PublicTimeline)
	public.Get("/orgs/:org_id/overview", s.PublicOverview)

	api := r.Group("/api")

	api.Post("/orgs", s.authed(s.CreateOrganization))
	api.Get("/orgs", s.authed(s.ListOrganizations))
	api.Get("/orgs/:org_id", s.authed(s.GetOrganization))
	api.Get("/orgs/:org_id/members", s.authed(s.ListMembers))
	api.Delete("/orgs/:org_id/members/:user_id", s.authed(s.RemoveMember))
	api.Post("/orgs/:org_id/invites", s.authed(s.Invite))
	api.Get("/orgs/:org_id/invites", s.authed(s.ListInvites))
	api.Get("/invites/:code", s.authed(s.GetInvite))
	api.Post("/invites/:code/join", s.authed(s.Join))

	api.Post("/apps", s.authed(s.CreateApp))
	api.Get("/orgs/:org_id/apps", s.authed(s.ListApps))
	api.Get("/apps/:id", s.authed(s.GetApp))
	api.Put("/apps/:id", s.authed(s.UpdateApp))
	api.Delete("/apps/:id", s.authed(s.DeleteApp))
	api.Get("/apps/:id/history", s.authed(s.AppHistory))

	api.Post("/incidents", s.authed(s.CreateIncident))
	api.Get("/orgs/:org_id/incidents", s.authed(s.ListIncidents))
	api.Get("/incidents/:id", s.authed(s.GetIncident))
	api.Put("/incidents/:id", s.authed(s.UpdateIncident))
	api.Delete("/incidents/:id", s.authed(s.DeleteIncident))

	api.Post("/incidents/:id/logs", s.authed(s.CreateLog))
	api.Get("/incidents/:id/logs", s.authed(s.ListLogs))
	api.Get("/incidents/:id/logs/:log_id", s.authed(s.GetLog))
	api.Put("/incidents/:id/logs/:log_id", s.authed(s.UpdateLog))
	api.Delete("/incidents/:id/logs/:log_id", s.authed(s.DeleteLog))

	api.Post("/maintenance", s.authed(s.CreateMaintenance))
	api.Get("/orgs/:org_id/maintenance", s.authed(s.ListMaintenance))
	api.Get("/maintenance/:id", s.authed(s.GetMaintenance))
	api.Put("/maintenance/:id", s.authed(s.UpdateMaintenance))
	api.Delete("/maintenance/:id", s.authed(s.DeleteMaintenance))
}
