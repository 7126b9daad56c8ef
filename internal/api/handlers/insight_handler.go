package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/food-insight/backend-go/internal/insight"
	"github.com/andresuchdata/food-insight/backend-go/internal/service"
)

// InsightProvider computes insight bundles; *service.InsightService implements it.
type InsightProvider interface {
	Compute(ctx context.Context, req service.ComputeRequest) (*insight.AllInsights, error)
	Section(ctx context.Context, name string, req service.ComputeRequest) (any, error)
	InvalidateCache(ctx context.Context) error
}

type InsightHandler struct {
	insights InsightProvider
}

func NewInsightHandler(insights InsightProvider) *InsightHandler {
	return &InsightHandler{insights: insights}
}

const dateLayout = "2006-01-02"

// parseRequest reads ?from=&to=&as_of= (YYYY-MM-DD), ?service_level=, ?strategy= and ?archive=.
func (h *InsightHandler) parseRequest(c *gin.Context) (service.ComputeRequest, error) {
	var req service.ComputeRequest

	parseDate := func(param string) (time.Time, error) {
		value := strings.TrimSpace(c.Query(param))
		if value == "" {
			return time.Time{}, nil
		}
		t, err := time.Parse(dateLayout, value)
		if err != nil {
			return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD, got %q", param, value)
		}
		return t, nil
	}

	var err error
	if req.Range.From, err = parseDate("from"); err != nil {
		return req, err
	}
	if req.Range.To, err = parseDate("to"); err != nil {
		return req, err
	}
	if req.AsOf, err = parseDate("as_of"); err != nil {
		return req, err
	}

	if value := strings.TrimSpace(c.Query("service_level")); value != "" {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return req, fmt.Errorf("service_level must be a number, got %q", value)
		}
		req.ServiceLevel = f
	}

	req.Strategy = strings.TrimSpace(c.Query("strategy"))

	if value := strings.TrimSpace(c.Query("archive")); value != "" {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return req, fmt.Errorf("archive must be a boolean, got %q", value)
		}
		req.Archive = b
	}

	return req, nil
}

func (h *InsightHandler) GetAll(c *gin.Context) {
	req, err := h.parseRequest(c)
	if err != nil {
		badRequest(c, "invalid query parameters", err)
		return
	}

	all, err := h.insights.Compute(c.Request.Context(), req)
	if err != nil {
		errorResponse(c, err, "failed to compute insights")
		return
	}

	c.JSON(http.StatusOK, all)
}

func (h *InsightHandler) GetSection(c *gin.Context) {
	req, err := h.parseRequest(c)
	if err != nil {
		badRequest(c, "invalid query parameters", err)
		return
	}

	name := strings.ToLower(strings.TrimSpace(c.Param("section")))
	data, err := h.insights.Section(c.Request.Context(), name, req)
	if err != nil {
		errorResponse(c, err, "failed to compute insight")
		return
	}

	c.JSON(http.StatusOK, gin.H{"section": name, "data": data})
}

// ListSections returns the section names GetSection accepts.
func (h *InsightHandler) ListSections(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sections": insight.Sections})
}

func (h *InsightHandler) InvalidateCache(c *gin.Context) {
	if err := h.insights.InvalidateCache(c.Request.Context()); err != nil {
		errorResponse(c, err, "failed to invalidate cache")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "invalidated"})
}

