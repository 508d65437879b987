package handlers

import (
	"net/http"
	"net/mail"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gourab8389/excel-analytics-server/internal/apierr"
	"github.com/gourab8389/excel-analytics-server/internal/bus"
	"github.com/gourab8389/excel-analytics-server/internal/models"
)

func (a *API) handleInviteUser(w http.ResponseWriter, r *http.Request) {
	claims := currentUser(r.Context())
	member := currentMembership(r.Context())

	var req struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.respondError(w, apierr.Validation("invalid request body"))
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(req.Email); err != nil {
		a.respondError(w, apierr.Validation("a valid email is required"))
		return
	}
	if req.Role != "" && req.Role != models.RoleAdmin && req.Role != models.RoleMember {
		a.respondError(w, apierr.Validation("role must be ADMIN or MEMBER"))
		return
	}

	invitation, err := a.invites.Issue(r.Context(), member.ProjectID, claims.UserID, req.Email, req.Role)
	if err != nil {
		a.respondError(w, err)
		return
	}

	a.bus.Publish(r.Context(), bus.InvitationIssuedSubject, map[string]any{
		"project_id": invitation.ProjectID,
		"email":      invitation.Email,
		"role":       invitation.Role,
	})

	respondSuccess(w, http.StatusOK, "Invitation sent successfully", map[string]any{
		"email":     invitation.Email,
		"projectId": invitation.ProjectID,
		"token":     invitation.Token,
	})
}

func (a *API) handleInspectInvitation(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		a.respondError(w, apierr.Validation("Invitation token is required"))
		return
	}

	preview, err := a.invites.Inspect(r.Context(), token)
	if err != nil {
		a.respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "", map[string]any{"invitation": preview})
}

func (a *API) handleAcceptInvitation(w http.ResponseWriter, r *http.Request) {
	claims := currentUser(r.Context())

	var req struct {
		Token string `json:"token"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Token == "" {
		a.respondError(w, apierr.Validation("Invitation token is required"))
		return
	}

	result, err := a.invites.Accept(r.Context(), req.Token, claims.UserID)
	if err != nil {
		a.respondError(w, err)
		return
	}

	a.bus.Publish(r.Context(), bus.InvitationAcceptedSubject, map[string]any{
		"project_id": result.Project.ID,
		"user_id":    claims.UserID,
		"role":       result.Role,
	})

	respondSuccess(w, http.StatusOK, "Invitation accepted successfully", map[string]any{
		"project": result.Project,
		"role":    result.Role,
	})
}
