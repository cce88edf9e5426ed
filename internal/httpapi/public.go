package httpapi

import (
	"net/http"

	"github.com/goliatone/go-router"

	"github.com/goliatone/go-statuspage/internal/statuspage"
)

// Public routes need no token; they expose only what a status page renders.

func (s *Server) PublicOrganizations(c router.Context) error {
	orgs, err := s.svc.PublicOrganizations(c.Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, orgs)
}

func (s *Server) PublicServices(c router.Context) error {
	orgID, err := pathID(c, "org_id")
	if err != nil {
		return s.fail(c, err)
	}
	services, err := s.svc.PublicServices(c.Context(), orgID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, services)
}

func (s *Server) PublicSummary(c router.Context) error {
	orgID, err := pathID(c, "org_id")
	if err != nil {
		return s.fail(c, err)
	}
	summary, err := s.svc.PublicSummary(c.Context(), orgID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

func (s *Server) PublicTimeline(c router.Context) error {
	orgID, err := pathID(c, "org_id")
	if err != nil {
		return s.fail(c, err)
	}
	limit := queryInt(c.Query("limit"), statuspage.DefaultTimelineLimit)
	entries, err := s.svc.PublicTimeline(c.Context(), orgID, limit)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}

func (s *Server) PublicOverview(c router.Context) error {
	orgID, err := pathID(c, "org_id")
	if err != nil {
		return s.fail(c, err)
	}
	overview, err := s.svc.PublicOverview(c.Context(), orgID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, overview)
}
