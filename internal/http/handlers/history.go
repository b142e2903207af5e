package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eduymaz/aller-mind/internal/data/audit"
	"github.com/eduymaz/aller-mind/internal/domain/history"
	"github.com/eduymaz/aller-mind/internal/http/response"
	"github.com/eduymaz/aller-mind/internal/platform/apierr"
)

var errHistoryDisabled = errors.New("prediction history is not enabled")

type HistoryHandler struct {
	audit *audit.Recorder
}

func NewHistoryHandler(rec *audit.Recorder) *HistoryHandler {
	return &HistoryHandler{audit: rec}
}

// List handles GET /v1/history?kind=&group_id=&client_id=&since=&limit=.
// since is RFC 3339 or a duration such as 24h.
func (h *HistoryHandler) List(c *gin.Context) {
	if !h.audit.HistoryEnabled() {
		response.RespondError(c, apierr.NotFound("history_disabled", errHistoryDisabled))
		return
	}
	f := history.Filter{
		Kind:     strings.TrimSpace(c.Query("kind")),
		ClientID: strings.TrimSpace(c.Query("client_id")),
	}
	if raw := c.Query("group_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			response.RespondError(c, apierr.BadRequest("invalid_group", "group_id", err))
			return
		}
		f.GroupID = id
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.RespondError(c, apierr.BadRequest("invalid_limit", "limit", errors.New("limit must be a non-negative integer")))
			return
		}
		f.Limit = n
	}
	since, err := parseSince(c.Query("since"), time.Now())
	if err != nil {
		response.RespondError(c, apierr.BadRequest("invalid_since", "since", err))
		return
	}
	f.Since = since

	records, err := h.audit.Recent(c.Request.Context(), f)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	if records == nil {
		records = []*history.PredictionRecord{}
	}
	response.RespondOK(c, gin.H{"records": records, "count": len(records)})
}

// Summary handles GET /v1/history/summary: record counts per risk level,
// over the last 24 hours unless since is given.
func (h *HistoryHandler) Summary(c *gin.Context) {
	if !h.audit.HistoryEnabled() {
		response.RespondError(c, apierr.NotFound("history_disabled", errHistoryDisabled))
		return
	}
	now := time.Now()
	raw := c.Query("since")
	if raw == "" {
		raw = "24h"
	}
	since, err := parseSince(raw, now)
	if err != nil {
		response.RespondError(c, apierr.BadRequest("invalid_since", "since", err))
		return
	}
	counts, err := h.audit.LevelCounts(c.Request.Context(), since)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"since": since.UTC(), "levels": counts})
}

func parseSince(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(raw); err == nil {
		if d < 0 {
			return time.Time{}, errors.New("since duration must be positive")
		}
		return now.Add(-d), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errors.New("since must be RFC 3339 or a duration")
	}
	return t, nil
}
