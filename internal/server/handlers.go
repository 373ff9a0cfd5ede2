package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/punchlist/internal/common"
	"github.com/Veraticus/punchlist/internal/engine"
	"github.com/Veraticus/punchlist/internal/model"
	"github.com/Veraticus/punchlist/internal/report"
	"github.com/Veraticus/punchlist/internal/service"
	"github.com/Veraticus/punchlist/internal/trade"
)

type handlers struct {
	engine  *engine.Engine
	storage service.Storage
}

type uploadResponse struct {
	Metrics            *model.Metrics         `json:"metrics,omitempty"`
	Duplicate          *model.DuplicateReport `json:"duplicate,omitempty"`
	InspectionID       string                 `json:"inspection_id,omitempty"`
	Checksum           string                 `json:"checksum"`
	MappingSource      string                 `json:"mapping_source,omitempty"`
	SaveError          string                 `json:"save_error,omitempty"`
	TotalRows          int                    `json:"total_rows"`
	ItemCount          int                    `json:"item_count"`
	WorkOrdersCreated  int                    `json:"work_orders_created"`
	MappingSuccessRate float64                `json:"mapping_success_rate"`
	Skipped            bool                   `json:"skipped"`
	DryRun             bool                   `json:"dry_run"`
}

type statusUpdate struct {
	Status model.WorkOrderStatus `json:"status" binding:"required"`
	Notes  string                `json:"notes"`
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) uploadInspection(c *gin.Context) {
	filename, data, err := readUpload(c, "file")
	if err != nil {
		writeError(c, err)
		return
	}

	up := engine.Upload{
		Data:          data,
		Filename:      filename,
		InspectorName: c.PostForm("inspector"),
		Building: model.BuildingInfo{
			Name:    c.PostForm("building"),
			Address: c.PostForm("address"),
			Date:    c.PostForm("date"),
		},
		Force:  formBool(c, "force"),
		DryRun: formBool(c, "dry_run"),
	}

	if _, mapping, err := readUpload(c, "mapping"); err == nil {
		table, err := trade.Parse(bytes.NewReader(mapping))
		if err != nil {
			writeError(c, err)
			return
		}
		up.Mapping = table
	} else if !errors.Is(err, http.ErrMissingFile) {
		writeError(c, err)
		return
	}

	result, err := h.engine.Process(c.Request.Context(), up)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := uploadResponse{
		Metrics:            result.Metrics,
		Duplicate:          result.Duplicate,
		InspectionID:       result.InspectionID,
		Checksum:           result.Checksum,
		MappingSource:      result.MappingSource,
		TotalRows:          result.TotalRows,
		ItemCount:          len(result.Items),
		WorkOrdersCreated:  result.WorkOrdersCreated,
		MappingSuccessRate: result.MappingSuccessRate,
		Skipped:            result.Skipped,
		DryRun:             up.DryRun,
	}

	switch {
	case result.Skipped:
		c.JSON(http.StatusConflict, resp)
	case result.SaveErr != nil:
		resp.SaveError = result.SaveErr.Error()
		c.JSON(http.StatusInternalServerError, resp)
	case up.DryRun:
		c.JSON(http.StatusOK, resp)
	default:
		c.JSON(http.StatusCreated, resp)
	}
}

func (h *handlers) checkInspection(c *gin.Context) {
	filename, data, err := readUpload(c, "file")
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"checksum":  engine.Checksum(data),
		"duplicate": h.engine.CheckDuplicate(c.Request.Context(), data, filename),
	})
}

func (h *handlers) listInspections(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		writeError(c, err)
		return
	}

	inspections, err := h.storage.ListInspections(c.Request.Context(), service.InspectionFilter{
		BuildingName: c.Query("building"),
		Limit:        limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inspections": inspections})
}

func (h *handlers) getInspection(c *gin.Context) {
	r, err := h.engine.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *handlers) getWorkbook(c *gin.Context) {
	r, err := h.engine.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(r)))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Status(http.StatusOK)
	if err := report.WriteWorkbook(c.Writer, r); err != nil {
		_ = c.Error(err)
	}
}

func (h *handlers) listWorkOrders(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		writeError(c, err)
		return
	}

	status := model.WorkOrderStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		writeError(c, fmt.Errorf("%w: %q", common.ErrInvalidStatus, status))
		return
	}

	orders, err := h.storage.GetWorkOrders(c.Request.Context(), service.WorkOrderFilter{
		InspectionID: c.Query("inspection_id"),
		Trade:        c.Query("trade"),
		Status:       status,
		Limit:        limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"work_orders": orders})
}

func (h *handlers) updateWorkOrder(c *gin.Context) {
	var req statusUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	if err := h.storage.UpdateWorkOrderStatus(c.Request.Context(), id, req.Status, req.Notes); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": req.Status})
}

func (h *handlers) overview(c *gin.Context) {
	overview, err := h.storage.GetProjectOverview(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"buildings": overview})
}

func (h *handlers) listTradeMappings(c *gin.Context) {
	table, source := h.engine.MasterMapping(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"source": source, "mappings": table.Mappings()})
}

func readUpload(c *gin.Context, field string) (string, []byte, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return "", nil, err
	}
	if header.Size > MaxUploadBytes {
		return "", nil, common.NewUserError(fmt.Sprintf("%s exceeds %d bytes", field, MaxUploadBytes), common.ErrUploadTooLarge)
	}

	f, err := header.Open()
	if err != nil {
		return "", nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, MaxUploadBytes+1))
	if err != nil {
		return "", nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return "", nil, common.NewUserError(fmt.Sprintf("%s exceeds %d bytes", field, MaxUploadBytes), common.ErrUploadTooLarge)
	}
	return header.Filename, data, nil
}

func formBool(c *gin.Context, field string) bool {
	v, err := strconv.ParseBool(c.PostForm(field))
	return err == nil && v
}

func queryInt(c *gin.Context, field string) (int, error) {
	raw := c.Query(field)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, common.NewUserError(fmt.Sprintf("%s must be a non-negative integer", field), common.ErrInvalidRequest)
	}
	return n, nil
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrUploadTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, http.ErrMissingFile),
		errors.Is(err, http.ErrNotMultipart),
		errors.Is(err, common.ErrEmptyUpload),
		errors.Is(err, common.ErrNoInspectionColumns),
		errors.Is(err, common.ErrInvalidMapping),
		errors.Is(err, common.ErrInvalidStatus),
		errors.Is(err, common.ErrInvalidRequest):
		status = http.StatusBadRequest
	}

	c.JSON(status, gin.H{"error": common.UserMessage(err)})
}
