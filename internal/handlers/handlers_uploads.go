package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/gourab8389/excel-analytics-server/internal/apierr"
	"github.com/gourab8389/excel-analytics-server/internal/bus"
	"github.com/gourab8389/excel-analytics-server/internal/excel"
	"github.com/gourab8389/excel-analytics-server/internal/models"
)

func (a *API) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	claims := currentUser(r.Context())
	member := currentMembership(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, a.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(a.cfg.MaxUploadBytes); err != nil {
		a.respondError(w, apierr.Validation("No file uploaded"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		a.respondError(w, apierr.Validation("No file uploaded"))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".xlsx" && ext != ".xls" {
		a.respondError(w, apierr.Validation("Only Excel files (.xlsx, .xls) are allowed"))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		a.respondError(w, err)
		return
	}

	if err := os.MkdirAll(a.cfg.UploadDir, 0o755); err != nil {
		a.respondError(w, err)
		return
	}

	storedName := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(header.Filename))
	storedPath := filepath.Join(a.cfg.UploadDir, storedName)
	if err := os.WriteFile(storedPath, data, 0o644); err != nil {
		a.respondError(w, err)
		return
	}

	upload := models.Upload{
		FileName:     storedName,
		OriginalName: header.Filename,
		FilePath:     storedPath,
		FileSize:     int64(len(data)),
		Status:       models.UploadStatusProcessing,
		UserID:       claims.UserID,
		ProjectID:    member.ProjectID,
	}
	if err := a.db.WithContext(r.Context()).Create(&upload).Error; err != nil {
		_ = os.Remove(storedPath)
		a.respondError(w, err)
		return
	}

	table, err := excel.Parse(data, header.Filename)
	if err != nil {
		// The attempt is terminal: keep the record marked failed, drop the file.
		a.db.WithContext(r.Context()).Model(&upload).Update("status", models.UploadStatusFailed)
		_ = os.Remove(storedPath)
		a.respondError(w, err)
		return
	}

	sheet, err := sheetDataFromTable(upload.ID, table)
	if err != nil {
		a.db.WithContext(r.Context()).Model(&upload).Update("status", models.UploadStatusFailed)
		_ = os.Remove(storedPath)
		a.respondError(w, err)
		return
	}

	now := time.Now().UTC()
	err = a.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sheet).Error; err != nil {
			return err
		}
		return tx.Model(&upload).Updates(map[string]any{
			"status":       models.UploadStatusCompleted,
			"processed_at": now,
		}).Error
	})
	if err != nil {
		a.respondError(w, err)
		return
	}

	a.bus.Publish(r.Context(), bus.UploadProcessedSubject, map[string]any{
		"upload_id":  upload.ID,
		"project_id": upload.ProjectID,
		"rows":       table.Metadata.TotalRows,
	})

	respondSuccess(w, http.StatusCreated, "File uploaded and processed successfully", map[string]any{
		"upload": map[string]any{
			"id":           upload.ID,
			"fileName":     upload.FileName,
			"originalName": upload.OriginalName,
			"fileSize":     upload.FileSize,
			"status":       models.UploadStatusCompleted,
			"uploadedAt":   upload.UploadedAt,
		},
		"data": table,
	})
}

func sheetDataFromTable(uploadID uuid.UUID, table *excel.Table) (*models.SheetData, error) {
	headers, err := json.Marshal(table.Headers)
	if err != nil {
		return nil, err
	}
	rows, err := json.Marshal(table.Rows)
	if err != nil {
		return nil, err
	}
	return &models.SheetData{
		UploadID: uploadID,
		Headers:  datatypes.JSON(headers),
		Rows:     datatypes.JSON(rows),
		Metadata: datatypes.JSONMap{
			"totalRows":    table.Metadata.TotalRows,
			"totalColumns": table.Metadata.TotalColumns,
			"fileName":     table.Metadata.FileName,
		},
	}, nil
}

func (a *API) handleListUploads(w http.ResponseWriter, r *http.Request) {
	claims := currentUser(r.Context())
	member := currentMembership(r.Context())

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	orm := a.db.WithContext(ctx)

	var uploads []models.Upload
	err := orm.Preload("Data").
		Order("uploaded_at DESC").
		Find(&uploads, "project_id = ? AND user_id = ?", member.ProjectID, claims.UserID).Error
	if err != nil {
		a.respondError(w, err)
		return
	}

	payload := make([]map[string]any, 0, len(uploads))
	for _, u := range uploads {
		var chartCount int64
		orm.Model(&models.Chart{}).Where("upload_id = ?", u.ID).Count(&chartCount)

		entry := map[string]any{
			"id":           u.ID,
			"fileName":     u.FileName,
			"originalName": u.OriginalName,
			"fileSize":     u.FileSize,
			"status":       u.Status,
			"uploadedAt":   u.UploadedAt,
			"processedAt":  u.ProcessedAt,
			"chartCount":   chartCount,
		}
		if u.Data != nil {
			entry["headers"] = u.Data.Headers
			entry["metadata"] = u.Data.Metadata
		}
		payload = append(payload, entry)
	}

	respondSuccess(w, http.StatusOK, "Uploads retrieved successfully", map[string]any{
		"uploads": payload,
	})
}

func (a *API) handleGetUpload(w http.ResponseWriter, r *http.Request) {
	claims := currentUser(r.Context())

	uploadID, err := uuid.Parse(chi.URLParam(r, "uploadID"))
	if err != nil {
		a.respondError(w, apierr.Validation("invalid upload id"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	orm := a.db.WithContext(ctx)

	var upload models.Upload
	err = orm.Preload("Data").Preload("Charts").Preload("User").
		First(&upload, "id = ?", uploadID).Error
	if err != nil {
		a.respondError(w, notFoundOr(err, "Upload not found"))
		return
	}

	// Any member of the owning project may view the upload.
	var membership models.ProjectMember
	err = orm.First(&membership, "user_id = ? AND project_id = ?", claims.UserID, upload.ProjectID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			a.respondError(w, apierr.Forbidden("Access denied to this project"))
			return
		}
		a.respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Upload details retrieved successfully", map[string]any{
		"upload": upload,
	})
}

func (a *API) handleDeleteUpload(w http.ResponseWriter, r *http.Request) {
	claims := currentUser(r.Context())

	uploadID, err := uuid.Parse(chi.URLParam(r, "uploadID"))
	if err != nil {
		a.respondError(w, apierr.Validation("invalid upload id"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	orm := a.db.WithContext(ctx)

	var upload models.Upload
	err = orm.First(&upload, "id = ? AND user_id = ?", uploadID, claims.UserID).Error
	if err != nil {
		a.respondError(w, notFoundOr(err, "Upload not found"))
		return
	}

	if upload.FilePath != "" {
		_ = os.Remove(upload.FilePath)
	}

	if err := orm.Select("Data", "Charts").Delete(&upload).Error; err != nil {
		a.respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Upload deleted successfully", nil)
}
