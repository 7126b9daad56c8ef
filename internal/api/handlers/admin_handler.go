package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
)

// AdminProvider manages the hand-maintained channel cost and payroll tables.
type AdminProvider interface {
	ListChannelCosts(ctx context.Context) ([]domain.ChannelCostSummary, error)
	GetChannelCost(ctx context.Context, channel string) (*domain.ChannelCostSummary, error)
	UpsertChannelCosts(ctx context.Context, costs []domain.ChannelCostSummary) error
	ListLaborRecords(ctx context.Context, fromMonth, toMonth string) ([]domain.LaborRecord, error)
	UpsertLaborRecords(ctx context.Context, records []domain.LaborRecord) error
	ListImportRuns(ctx context.Context, limit int) ([]domain.ImportRun, error)
	GetImportRun(ctx context.Context, id int64) (*domain.ImportRun, error)
}

type AdminHandler struct {
	admin AdminProvider
}

func NewAdminHandler(admin AdminProvider) *AdminHandler {
	return &AdminHandler{admin: admin}
}

func (h *AdminHandler) GetChannelCosts(c *gin.Context) {
	costs, err := h.admin.ListChannelCosts(c.Request.Context())
	if err != nil {
		errorResponse(c, err, "failed to fetch channel costs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"channel_costs": costs})
}

func (h *AdminHandler) GetChannelCost(c *gin.Context) {
	cost, err := h.admin.GetChannelCost(c.Request.Context(), c.Param("channel"))
	if err != nil {
		errorResponse(c, err, "failed to fetch channel cost")
		return
	}
	c.JSON(http.StatusOK, cost)
}

// PutChannelCosts upserts the posted rows; channels not in the body are kept.
func (h *AdminHandler) PutChannelCosts(c *gin.Context) {
	var body struct {
		ChannelCosts []domain.ChannelCostSummary `json:"channel_costs" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	if err := h.admin.UpsertChannelCosts(c.Request.Context(), body.ChannelCosts); err != nil {
		errorResponse(c, err, "failed to save channel costs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": len(body.ChannelCosts)})
}

func (h *AdminHandler) GetLaborRecords(c *gin.Context) {
	fromMonth := strings.TrimSpace(c.Query("from_month"))
	toMonth := strings.TrimSpace(c.Query("to_month"))

	records, err := h.admin.ListLaborRecords(c.Request.Context(), fromMonth, toMonth)
	if err != nil {
		errorResponse(c, err, "failed to fetch labor records")
		return
	}
	c.JSON(http.StatusOK, gin.H{"labor_records": records})
}

func (h *AdminHandler) PutLaborRecords(c *gin.Context) {
	var body struct {
		LaborRecords []domain.LaborRecord `json:"labor_records" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	if err := h.admin.UpsertLaborRecords(c.Request.Context(), body.LaborRecords); err != nil {
		errorResponse(c, err, "failed to save labor records")
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": len(body.LaborRecords)})
}

func (h *AdminHandler) GetImportRuns(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequest(c, "limit must be a positive integer", err)
			return
		}
		limit = n
	}

	runs, err := h.admin.ListImportRuns(c.Request.Context(), limit)
	if err != nil {
		errorResponse(c, err, "failed to fetch import runs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"import_runs": runs})
}

func (h *AdminHandler) GetImportRun(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid import run id", err)
		return
	}

	run, err := h.admin.GetImportRun(c.Request.Context(), id)
	if err != nil {
		errorResponse(c, err, "failed to fetch import run")
		return
	}
	c.JSON(http.StatusOK, run)
}
