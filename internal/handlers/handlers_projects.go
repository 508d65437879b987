package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gourab8389/excel-analytics-server/internal/apierr"
	"github.com/gourab8389/excel-analytics-server/internal/models"
)

func (a *API) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	claims := currentUser(r.Context())

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.respondError(w, apierr.Validation("invalid request body"))
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if len(req.Name) < 3 || len(req.Name) > 100 {
		a.respondError(w, apierr.Validation("name must be between 3 and 100 characters"))
		return
	}
	if len(req.Description) > 500 {
		a.respondError(w, apierr.Validation("description must be at most 500 characters"))
		return
	}
	if req.Type != models.ProjectTypeSingle && req.Type != models.ProjectTypeOrganization {
		a.respondError(w, apierr.Validation("type must be SINGLE or ORGANIZATION"))
		return
	}

	// Creators of organization projects administer them; single projects
	// carry plain membership.
	role := models.RoleMember
	if req.Type == models.ProjectTypeOrganization {
		role = models.RoleAdmin
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	project := models.Project{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		CreatorID:   claims.UserID,
	}
	member := models.ProjectMember{UserID: claims.UserID, Role: role}

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		member.ProjectID = project.ID
		return tx.Create(&member).Error
	})
	if err != nil {
		a.respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, "Project created successfully", map[string]any{
		"project": project,
	})
}

func (a *API) handleListProjects(w http.ResponseWriter, r *http.Request) {
	claims := currentUser(r.Context())

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	orm := a.db.WithContext(ctx)

	var memberships []models.ProjectMember
	err := orm.Preload("Project").
		Order("joined_at DESC").
		Find(&memberships, "user_id = ?", claims.UserID).Error
	if err != nil {
		a.respondError(w, err)
		return
	}

	projects := make([]map[string]any, 0, len(memberships))
	for _, m := range memberships {
		if m.Project == nil {
			continue
		}
		var memberCount, uploadCount int64
		orm.Model(&models.ProjectMember{}).Where("project_id = ?", m.ProjectID).Count(&memberCount)
		orm.Model(&models.Upload{}).Where("project_id = ?", m.ProjectID).Count(&uploadCount)

		projects = append(projects, map[string]any{
			"id":          m.Project.ID,
			"name":        m.Project.Name,
			"description": m.Project.Description,
			"type":        m.Project.Type,
			"creatorId":   m.Project.CreatorID,
			"createdAt":   m.Project.CreatedAt,
			"role":        m.Role,
			"joinedAt":    m.JoinedAt,
			"memberCount": memberCount,
			"uploadCount": uploadCount,
		})
	}

	respondSuccess(w, http.StatusOK, "", map[string]any{"projects": projects})
}

func (a *API) handleGetProject(w http.ResponseWriter, r *http.Request) {
	member := currentMembership(r.Context())

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	orm := a.db.WithContext(ctx)

	var project models.Project
	err := orm.Preload("Creator").Preload("Members.User").
		First(&project, "id = ?", member.ProjectID).Error
	if err != nil {
		a.respondError(w, notFoundOr(err, "Project not found"))
		return
	}

	var uploadCount int64
	orm.Model(&models.Upload{}).Where("project_id = ?", project.ID).Count(&uploadCount)

	respondSuccess(w, http.StatusOK, "", map[string]any{
		"project":     project,
		"uploadCount": uploadCount,
	})
}

func (a *API) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	claims := currentUser(r.Context())
	member := currentMembership(r.Context())

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.respondError(w, apierr.Validation("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Description) == "" {
		a.respondError(w, apierr.Validation("Name and description are required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	orm := a.db.WithContext(ctx)

	var project models.Project
	if err := orm.First(&project, "id = ?", member.ProjectID).Error; err != nil {
		a.respondError(w, notFoundOr(err, "Project not found"))
		return
	}

	if project.CreatorID != claims.UserID {
		a.respondError(w, apierr.Forbidden("Only the project creator can update projects"))
		return
	}

	updates := map[string]any{"name": strings.TrimSpace(req.Name), "description": req.Description}
	if err := orm.Model(&project).Updates(updates).Error; err != nil {
		a.respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Project updated successfully", map[string]any{
		"project": project,
	})
}

func (a *API) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	claims := currentUser(r.Context())
	member := currentMembership(r.Context())

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	orm := a.db.WithContext(ctx)

	var project models.Project
	if err := orm.First(&project, "id = ?", member.ProjectID).Error; err != nil {
		a.respondError(w, notFoundOr(err, "Project not found"))
		return
	}

	if project.CreatorID != claims.UserID {
		a.respondError(w, apierr.Forbidden("Only the project creator can delete projects"))
		return
	}

	if err := orm.Select("Members", "Uploads").Delete(&project).Error; err != nil {
		a.respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Project deleted successfully", nil)
}

func (a *API) handleUpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	claims := currentUser(r.Context())
	member := currentMembership(r.Context())

	var req struct {
		UserID uuid.UUID `json:"userId"`
		Role   string    `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.respondError(w, apierr.Validation("invalid request body"))
		return
	}
	if req.UserID == uuid.Nil || req.Role == "" {
		a.respondError(w, apierr.Validation("User ID and role are required"))
		return
	}
	if req.Role != models.RoleAdmin && req.Role != models.RoleMember {
		a.respondError(w, apierr.Validation("role must be ADMIN or MEMBER"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	orm := a.db.WithContext(ctx)

	var project models.Project
	if err := orm.First(&project, "id = ?", member.ProjectID).Error; err != nil {
		a.respondError(w, notFoundOr(err, "Project not found"))
		return
	}
	if project.CreatorID != claims.UserID {
		a.respondError(w, apierr.Forbidden("You do not have permission to update member roles"))
		return
	}

	res := orm.Model(&models.ProjectMember{}).
		Where("user_id = ? AND project_id = ?", req.UserID, member.ProjectID).
		Update("role", req.Role)
	if res.Error != nil {
		a.respondError(w, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		a.respondError(w, apierr.NotFound("Member not found"))
		return
	}

	respondSuccess(w, http.StatusOK, "Member role updated successfully", nil)
}

func (a *API) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	claims := currentUser(r.Context())
	member := currentMembership(r.Context())

	var req struct {
		UserID uuid.UUID `json:"userId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.respondError(w, apierr.Validation("invalid request body"))
		return
	}
	if req.UserID == uuid.Nil {
		a.respondError(w, apierr.Validation("User ID is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	orm := a.db.WithContext(ctx)

	var project models.Project
	if err := orm.First(&project, "id = ?", member.ProjectID).Error; err != nil {
		a.respondError(w, notFoundOr(err, "Project not found"))
		return
	}
	if project.CreatorID != claims.UserID {
		a.respondError(w, apierr.Forbidden("You do not have permission to remove members"))
		return
	}

	res := orm.Where("user_id = ? AND project_id = ?", req.UserID, member.ProjectID).
		Delete(&models.ProjectMember{})
	if res.Error != nil {
		a.respondError(w, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		a.respondError(w, apierr.NotFound("Member not found"))
		return
	}

	respondSuccess(w, http.StatusOK, "Member removed successfully", nil)
}
