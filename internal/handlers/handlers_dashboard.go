package handlers

import (
	"net/http"

	"github.com/gourab8389/excel-analytics-server/internal/models"
)

func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	claims := currentUser(r.Context())

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	orm := a.db.WithContext(ctx)

	var projectsCount, uploadsCount, chartsCount int64
	if err := orm.Model(&models.ProjectMember{}).Where("user_id = ?", claims.UserID).Count(&projectsCount).Error; err != nil {
		a.respondError(w, err)
		return
	}
	if err := orm.Model(&models.Upload{}).Where("user_id = ?", claims.UserID).Count(&uploadsCount).Error; err != nil {
		a.respondError(w, err)
		return
	}
	err := orm.Model(&models.Chart{}).
		Joins("JOIN uploads ON uploads.id = charts.upload_id").
		Where("uploads.user_id = ?", claims.UserID).
		Count(&chartsCount).Error
	if err != nil {
		a.respondError(w, err)
		return
	}

	var recentUploads []models.Upload
	err = orm.Preload("Project").
		Order("uploaded_at DESC").
		Limit(5).
		Find(&recentUploads, "user_id = ?", claims.UserID).Error
	if err != nil {
		a.respondError(w, err)
		return
	}

	var recentMemberships []models.ProjectMember
	err = orm.Preload("Project").
		Order("joined_at DESC").
		Limit(5).
		Find(&recentMemberships, "user_id = ?", claims.UserID).Error
	if err != nil {
		a.respondError(w, err)
		return
	}

	recentProjects := make([]map[string]any, 0, len(recentMemberships))
	for _, m := range recentMemberships {
		if m.Project == nil {
			continue
		}
		recentProjects = append(recentProjects, map[string]any{
			"id":          m.Project.ID,
			"name":        m.Project.Name,
			"description": m.Project.Description,
			"type":        m.Project.Type,
			"role":        m.Role,
		})
	}

	respondSuccess(w, http.StatusOK, "", map[string]any{
		"stats": map[string]any{
			"projectsCount": projectsCount,
			"uploadsCount":  uploadsCount,
			"chartsCount":   chartsCount,
		},
		"recentUploads":  recentUploads,
		"recentProjects": recentProjects,
	})
}
