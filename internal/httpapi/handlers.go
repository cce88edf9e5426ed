package httpapi

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-router"

	"github.com/goliatone/go-statuspage/internal/commands"
	"github.com/goliatone/go-statuspage/internal/statuspage"
	"github.com/goliatone/go-statuspage/pkg/auth"
)

// CreateOrganization stores a new organization owned by the caller.
func (s *Server) CreateOrganization(c router.Context, actor auth.Actor) error {
	var input statuspage.CreateOrganizationInput
	if err := c.Bind(&input); err != nil {
		return badRequest(c, "invalid request")
	}
	org, err := s.svc.CreateOrganization(c.Context(), actor, input)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, org)
}

// ListOrganizations lists the organizations the caller belongs to.
func (s *Server) ListOrganizations(c router.Context, actor auth.Actor) error {
	orgs, err := s.svc.ListOrganizations(c.Context(), actor)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, orgs)
}

func (s *Server) GetOrganization(c router.Context, actor auth.Actor) error {
	orgID, err := pathID(c, "org_id")
	if err != nil {
		return s.fail(c, err)
	}
	org, err := s.svc.GetOrganization(c.Context(), actor, orgID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, org)
}

func (s *Server) ListMembers(c router.Context, actor auth.Actor) error {
	orgID, err := pathID(c, "org_id")
	if err != nil {
		return s.fail(c, err)
	}
	members, err := s.svc.ListMembers(c.Context(), actor, orgID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, members)
}

// RemoveMember runs the remove-member command.
func (s *Server) RemoveMember(c router.Context, actor auth.Actor) error {
	orgID, err := pathID(c, "org_id")
	if err != nil {
		return s.fail(c, err)
	}
	userID := strings.TrimSpace(c.Param("user_id", ""))
	if userID == "" {
		return badRequest(c, "user_id required")
	}
	if err := s.commands.RemoveMember.Execute(c.Context(), commands.RemoveMember{
		Actor:  actor,
		OrgID:  orgID,
		UserID: userID,
	}); err != nil {
		return s.fail(c, err)
	}
	return ok(c)
}

func (s *Server) Invite(c router.Context, actor auth.Actor) error {
	orgID, err := pathID(c, "org_id")
	if err != nil {
		return s.fail(c, err)
	}
	var input statuspage.InviteInput
	if err := c.Bind(&input); err != nil {
		return badRequest(c, "invalid request")
	}
	invite, err := s.svc.Invite(c.Context(), actor, orgID, input)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, invite)
}

func (s *Server) ListInvites(c router.Context, actor auth.Actor) error {
	orgID, err := pathID(c, "org_id")
	if err != nil {
		return s.fail(c, err)
	}
	invites, err := s.svc.ListInvites(c.Context(), actor, orgID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, invites)
}

func (s *Server) GetInvite(c router.Context, _ auth.Actor) error {
	code, err := pathID(c, "code")
	if err != nil {
		return s.fail(c, err)
	}
	invite, err := s.svc.GetInvite(c.Context(), code)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, invite)
}

// Join redeems an invite code for the caller.
func (s *Server) Join(c router.Context, actor auth.Actor) error {
	code, err := pathID(c, "code")
	if err != nil {
		return s.fail(c, err)
	}
	if err := s.commands.JoinOrganization.Execute(c.Context(), commands.JoinOrganization{
		Actor: actor,
		Code:  code,
	}); err != nil {
		return s.fail(c, err)
	}
	return ok(c)
}

func (s *Server) CreateApp(c router.Context, actor auth.Actor) error {
	var input statuspage.CreateAppInput
	if err := c.Bind(&input); err != nil {
		return badRequest(c, "invalid request")
	}
	app, err := s.svc.CreateApp(c.Context(), actor, input)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, app)
}

func (s *Server) ListApps(c router.Context, actor auth.Actor) error {
	orgID, err := pathID(c, "org_id")
	if err != nil {
		return s.fail(c, err)
	}
	apps, err := s.svc.ListApps(c.Context(), actor, orgID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, apps)
}

func (s *Server) GetApp(c router.Context, actor auth.Actor) error {
	id, err := pathID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	app, err := s.svc.GetApp(c.Context(), actor, id)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, app)
}

func (s *Server) UpdateApp(c router.Context, actor auth.Actor) error {
	id, err := pathID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	var input statuspage.UpdateAppInput
	if err := c.Bind(&input); err != nil {
		return badRequest(c, "invalid request")
	}
	app, err := s.svc.UpdateApp(c.Context(), actor, id, input)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, app)
}

func (s *Server) DeleteApp(c router.Context, actor auth.Actor) error {
	id, err := pathID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	if err := s.commands.DeleteApp.Execute(c.Context(), commands.DeleteApp{Actor: actor, ID: id}); err != nil {
		return s.fail(c, err)
	}
	return ok(c)
}

// AppHistory accepts optional since, until (RFC 3339) and limit query values.
func (s *Server) AppHistory(c router.Context, actor auth.Actor) error {
	id, err := pathID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	since, err := queryTime(c.Query("since"))
	if err != nil {
		return badRequest(c, "since must be RFC 3339")
	}
	until, err := queryTime(c.Query("until"))
	if err != nil {
		return badRequest(c, "until must be RFC 3339")
	}
	history, err := s.svc.AppHistory(c.Context(), actor, id, statuspage.HistoryFilter{
		Since: since,
		Until: until,
		Limit: queryInt(c.Query("limit"), 0),
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, history)
}

func (s *Server) CreateIncident(c router.Context, actor auth.Actor) error {
	var input statuspage.CreateIncidentInput
	if err := c.Bind(&input); err != nil {
		return badRequest(c, "invalid request")
	}
	incident, err := s.svc.CreateIncident(c.Context(), actor, input)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, incident)
}

// ListIncidents accepts optional app_id and active=true filters.
func (s *Server) ListIncidents(c router.Context, actor auth.Actor) error {
	orgID, err := pathID(c, "org_id")
	if err != nil {
		return s.fail(c, err)
	}
	appID, err := optionalID(c.Query("app_id"), "app_id")
	if err != nil {
		return s.fail(c, err)
	}
	incidents, err := s.svc.ListIncidents(c.Context(), actor, orgID, statuspage.IncidentFilter{
		AppID:      appID,
		ActiveOnly: c.Query("active") == "true",
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, incidents)
}

func (s *Server) GetIncident(c router.Context, actor auth.Actor) error {
	id, err := pathID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	incident, err := s.svc.GetIncident(c.Context(), actor, id)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, incident)
}

func (s *Server) UpdateIncident(c router.Context, actor auth.Actor) error {
	id, err := pathID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	var input statuspage.UpdateIncidentInput
	if err := c.Bind(&input); err != nil {
		return badRequest(c, "invalid request")
	}
	incident, err := s.svc.UpdateIncident(c.Context(), actor, id, input)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, incident)
}

func (s *Server) DeleteIncident(c router.Context, actor auth.Actor) error {
	id, err := pathID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	if err := s.commands.DeleteIncident.Execute(c.Context(), commands.DeleteIncident{Actor: actor, ID: id}); err != nil {
		return s.fail(c, err)
	}
	return ok(c)
}

func (s *Server) CreateLog(c router.Context, actor auth.Actor) error {
	incidentID, err := pathID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	var input statuspage.LogInput
	if err := c.Bind(&input); err != nil {
		return badRequest(c, "invalid request")
	}
	entry, err := s.svc.CreateLog(c.Context(), actor, incidentID, input)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, entry)
}

func (s *Server) ListLogs(c router.Context, actor auth.Actor) error {
	incidentID, err := pathID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	logs, err := s.svc.ListLogs(c.Context(), actor, incidentID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

func (s *Server) GetLog(c router.Context, actor auth.Actor) error {
	incidentID, err := pathID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	logID, err := pathID(c, "log_id")
	if err != nil {
		return s.fail(c, err)
	}
	entry, err := s.svc.GetLog(c.Context(), actor, incidentID, logID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, entry)
}

func (s *Server) UpdateLog(c router.Context, actor auth.Actor) error {
	incidentID, err := pathID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	logID, err := pathID(c, "log_id")
	if err != nil {
		return s.fail(c, err)
	}
	var input statuspage.UpdateLogInput
	if err := c.Bind(&input); err != nil {
		return badRequest(c, "invalid request")
	}
	entry, err := s.svc.UpdateLog(c.Context(), actor, incidentID, logID, input)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, entry)
}

func (s *Server) DeleteLog(c router.Context, actor auth.Actor) error {
	incidentID, err := pathID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	logID, err := pathID(c, "log_id")
	if err != nil {
		return s.fail(c, err)
	}
	if err := s.commands.DeleteLog.Execute(c.Context(), commands.DeleteLog{
		Actor:      actor,
		IncidentID: incidentID,
		ID:         logID,
	}); err != nil {
		return s.fail(c, err)
	}
	return ok(c)
}

func (s *Server) CreateMaintenance(c router.Context, actor auth.Actor) error {
	var input statuspage.CreateMaintenanceInput
	if err := c.Bind(&input); err != nil {
		return badRequest(c, "invalid request")
	}
	m, err := s.svc.CreateMaintenance(c.Context(), actor, input)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (s *Server) ListMaintenance(c router.Context, actor auth.Actor) error {
	orgID, err := pathID(c, "org_id")
	if err != nil {
		return s.fail(c, err)
	}
	appID, err := optionalID(c.Query("app_id"), "app_id")
	if err != nil {
		return s.fail(c, err)
	}
	windows, err := s.svc.ListMaintenance(c.Context(), actor, orgID, appID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, windows)
}

func (s *Server) GetMaintenance(c router.Context, actor auth.Actor) error {
	id, err := pathID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	m, err := s.svc.GetMaintenance(c.Context(), actor, id)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (s *Server) UpdateMaintenance(c router.Context, actor auth.Actor) error {
	id, err := pathID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	var input statuspage.UpdateMaintenanceInput
	if err := c.Bind(&input); err != nil {
		return badRequest(c, "invalid request")
	}
	m, err := s.svc.UpdateMaintenance(c.Context(), actor, id, input)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (s *Server) DeleteMaintenance(c router.Context, actor auth.Actor) error {
	id, err := pathID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	if err := s.commands.DeleteMaintenance.Execute(c.Context(), commands.DeleteMaintenance{Actor: actor, ID: id}); err != nil {
		return s.fail(c, err)
	}
	return ok(c)
}
