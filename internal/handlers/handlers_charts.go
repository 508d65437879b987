package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/gourab8389/excel-analytics-server/internal/apierr"
	"github.com/gourab8389/excel-analytics-server/internal/bus"
	"github.com/gourab8389/excel-analytics-server/internal/chart"
	"github.com/gourab8389/excel-analytics-server/internal/excel"
	"github.com/gourab8389/excel-analytics-server/internal/models"
)

type chartRequest struct {
	XAxis   string         `json:"xAxis"`
	YAxis   string         `json:"yAxis"`
	Type    string         `json:"chartType"`
	Title   string         `json:"title"`
	Styling map[string]any `json:"styling"`
}

// decodeChartRequest validates the request shape and decodes the chart kind
// once at the boundary.
func decodeChartRequest(r *http.Request) (chartRequest, chart.Kind, error) {
	var req chartRequest
	if err := decodeJSON(r, &req); err != nil {
		return req, "", apierr.Validation("invalid request body")
	}
	if req.XAxis == "" || req.YAxis == "" {
		return req, "", apierr.Validation("xAxis and yAxis are required")
	}
	kind, err := chart.ParseKind(req.Type)
	if err != nil {
		return req, "", err
	}
	return req, kind, nil
}

// chartBlob is the persisted data payload: the derived point series plus the
// renderer descriptor.
type chartBlob struct {
	ChartData   []excel.Point    `json:"chartData"`
	ChartConfig chart.Descriptor `json:"chartConfig"`
}

func buildChartModel(req chartRequest, kind chart.Kind, rows []excel.Row) (*models.Chart, *chartBlob, error) {
	if !excel.ValidateAxes(rows, req.XAxis, req.YAxis) {
		return nil, nil, apierr.Validation("Invalid data for the selected axes")
	}

	points := excel.PreparePoints(rows, req.XAxis, req.YAxis)
	descriptor := chart.Build(points, chart.Config{
		XAxis:   req.XAxis,
		YAxis:   req.YAxis,
		Kind:    kind,
		Title:   req.Title,
		Styling: req.Styling,
	})

	blob := chartBlob{ChartData: points, ChartConfig: descriptor}
	data, err := json.Marshal(blob)
	if err != nil {
		return nil, nil, err
	}

	name := req.Title
	if name == "" {
		name = kind.String() + " Chart"
	}

	cfg := datatypes.JSONMap{
		"xAxis":     req.XAxis,
		"yAxis":     req.YAxis,
		"chartType": kind.String(),
		"title":     req.Title,
	}
	if req.Styling != nil {
		cfg["styling"] = req.Styling
	}

	return &models.Chart{
		Name:   name,
		Type:   kind.String(),
		Config: cfg,
		Data:   datatypes.JSON(data),
	}, &blob, nil
}

func (a *API) sheetRows(r *http.Request, uploadID uuid.UUID) ([]excel.Row, error) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var sheet models.SheetData
	if err := a.db.WithContext(ctx).First(&sheet, "upload_id = ?", uploadID).Error; err != nil {
		return nil, notFoundOr(err, "Upload data not found")
	}

	var rows []excel.Row
	if err := json.Unmarshal(sheet.Rows, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (a *API) handleCreateChart(w http.ResponseWriter, r *http.Request) {
	uploadID, err := uuid.Parse(chi.URLParam(r, "uploadID"))
	if err != nil {
		a.respondError(w, apierr.Validation("invalid upload id"))
		return
	}

	req, kind, err := decodeChartRequest(r)
	if err != nil {
		a.respondError(w, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var upload models.Upload
	if err := a.db.WithContext(ctx).First(&upload, "id = ?", uploadID).Error; err != nil {
		a.respondError(w, notFoundOr(err, "Upload data not found"))
		return
	}

	rows, err := a.sheetRows(r, uploadID)
	if err != nil {
		a.respondError(w, err)
		return
	}

	model, _, err := buildChartModel(req, kind, rows)
	if err != nil {
		a.respondError(w, err)
		return
	}
	model.UploadID = uploadID

	if err := a.db.WithContext(ctx).Create(model).Error; err != nil {
		a.respondError(w, err)
		return
	}

	a.bus.Publish(r.Context(), bus.ChartCreatedSubject, map[string]any{
		"chart_id":  model.ID,
		"upload_id": uploadID,
		"type":      model.Type,
	})

	respondSuccess(w, http.StatusCreated, "Chart created successfully", map[string]any{
		"chart": model,
	})
}

func (a *API) handleListCharts(w http.ResponseWriter, r *http.Request) {
	uploadID, err := uuid.Parse(chi.URLParam(r, "uploadID"))
	if err != nil {
		a.respondError(w, apierr.Validation("invalid upload id"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var charts []models.Chart
	err = a.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&charts, "upload_id = ?", uploadID).Error
	if err != nil {
		a.respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "", map[string]any{"charts": charts})
}

func (a *API) handleGetChart(w http.ResponseWriter, r *http.Request) {
	chartID, err := uuid.Parse(chi.URLParam(r, "chartID"))
	if err != nil {
		a.respondError(w, apierr.Validation("invalid chart id"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var model models.Chart
	err = a.db.WithContext(ctx).Preload("Upload.User").First(&model, "id = ?", chartID).Error
	if err != nil {
		a.respondError(w, notFoundOr(err, "Chart not found"))
		return
	}

	respondSuccess(w, http.StatusOK, "", map[string]any{"chart": model})
}

func (a *API) handleUpdateChart(w http.ResponseWriter, r *http.Request) {
	chartID, err := uuid.Parse(chi.URLParam(r, "chartID"))
	if err != nil {
		a.respondError(w, apierr.Validation("invalid chart id"))
		return
	}

	req, kind, err := decodeChartRequest(r)
	if err != nil {
		a.respondError(w, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var existing models.Chart
	if err := a.db.WithContext(ctx).First(&existing, "id = ?", chartID).Error; err != nil {
		a.respondError(w, notFoundOr(err, "Chart not found"))
		return
	}

	rows, err := a.sheetRows(r, existing.UploadID)
	if err != nil {
		a.respondError(w, err)
		return
	}

	model, _, err := buildChartModel(req, kind, rows)
	if err != nil {
		a.respondError(w, err)
		return
	}

	updates := map[string]any{
		"name":   model.Name,
		"type":   model.Type,
		"config": model.Config,
		"data":   model.Data,
	}
	if err := a.db.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
		a.respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Chart updated successfully", map[string]any{
		"chart": existing,
	})
}

func (a *API) handleDeleteChart(w http.ResponseWriter, r *http.Request) {
	chartID, err := uuid.Parse(chi.URLParam(r, "chartID"))
	if err != nil {
		a.respondError(w, apierr.Validation("invalid chart id"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	res := a.db.WithContext(ctx).Delete(&models.Chart{}, "id = ?", chartID)
	if res.Error != nil {
		a.respondError(w, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		a.respondError(w, apierr.NotFound("Chart not found"))
		return
	}

	respondSuccess(w, http.StatusOK, "Chart deleted successfully", nil)
}
