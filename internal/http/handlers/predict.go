package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	rediscache "github.com/eduymaz/aller-mind/internal/clients/redis"
	"github.com/eduymaz/aller-mind/internal/data/audit"
	"github.com/eduymaz/aller-mind/internal/domain/history"
	"github.com/eduymaz/aller-mind/internal/http/response"
	"github.com/eduymaz/aller-mind/internal/inference/engine"
	"github.com/eduymaz/aller-mind/internal/inference/profile"
	"github.com/eduymaz/aller-mind/internal/platform/apierr"
	"github.com/eduymaz/aller-mind/internal/platform/ctxutil"
	"github.com/eduymaz/aller-mind/internal/platform/logger"
)

const DefaultBatchLimit = 10

type PredictRequest struct {
	EnvironmentalData map[string]any  `json:"environmental_data"`
	PersonalParams    *profile.Params `json:"personal_params,omitempty"`
}

type PredictHandlerConfig struct {
	Engine         *engine.Engine
	Models         ModelCatalog
	Cache          rediscache.PredictionCache
	Audit          *audit.Recorder
	PredictTimeout time.Duration
	BatchLimit     int
}

type PredictHandler struct {
	log        *logger.Logger
	engine     *engine.Engine
	models     ModelCatalog
	cache      rediscache.PredictionCache
	audit      *audit.Recorder
	timeout    time.Duration
	batchLimit int
}

func NewPredictHandler(log *logger.Logger, cfg PredictHandlerConfig) *PredictHandler {
	limit := cfg.BatchLimit
	if limit <= 0 {
		limit = DefaultBatchLimit
	}
	return &PredictHandler{
		log:        log.With("handler", "PredictHandler"),
		engine:     cfg.Engine,
		models:     cfg.Models,
		cache:      cfg.Cache,
		audit:      cfg.Audit,
		timeout:    cfg.PredictTimeout,
		batchLimit: limit,
	}
}

func (h *PredictHandler) bind(c *gin.Context) (*PredictRequest, bool) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apierr.BadRequest("invalid_json", "", fmt.Errorf("%w: %v", errNoBody, err)))
		return nil, false
	}
	if len(req.EnvironmentalData) == 0 {
		response.RespondError(c, apierr.BadRequest("missing_environmental_data", "environmental_data", errNoBody))
		return nil, false
	}
	return &req, true
}

type groupResponse struct {
	Prediction *engine.GroupPrediction `json:"prediction"`
	Cached     bool                    `json:"cached"`
}

// PredictGroup handles POST /v1/predict/group/:id.
func (h *PredictHandler) PredictGroup(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.RespondError(c, apierr.BadRequest("invalid_group", "id", fmt.Errorf("%w: %q", engine.ErrInvalidGroup, c.Param("id"))))
		return
	}
	req, ok := h.bind(c)
	if !ok {
		return
	}
	ctx, cancel := withTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	key, cacheable := h.cacheKey("group", id, req)
	var out groupResponse
	if cacheable && h.lookup(ctx, key, &out.Prediction) {
		out.Cached = true
	} else {
		out.Prediction, err = h.engine.PredictGroup(ctx, req.EnvironmentalData, id, req.PersonalParams)
		if err != nil {
			response.RespondError(c, engineError(err))
			return
		}
		h.store(ctx, key, cacheable, out.Prediction)
	}

	p := out.Prediction
	h.audit.Record(ctx, audit.Entry{
		Kind:      history.KindGroup,
		GroupID:   p.GroupID,
		SafeHours: p.PersonalSafeHours,
		RiskScore: p.RiskScore,
		RiskLevel: string(p.RiskLevel),
		ClientID:  ctxutil.ClientID(ctx),
		RequestID: ctxutil.RequestID(ctx),
		Payload:   p,
	})
	response.RespondOK(c, out)
}

type ensembleResponse struct {
	*engine.EnsemblePrediction
	Cached bool `json:"cached"`
}

// PredictEnsemble handles POST /v1/predict/ensemble.
func (h *PredictHandler) PredictEnsemble(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	ctx, cancel := withTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	out, err := h.ensemble(ctx, req)
	if err != nil {
		response.RespondError(c, engineError(err))
		return
	}
	h.recordEnsemble(ctx, history.KindEnsemble, out.EnsemblePrediction)
	response.RespondOK(c, out)
}

func (h *PredictHandler) ensemble(ctx context.Context, req *PredictRequest) (ensembleResponse, error) {
	key, cacheable := h.cacheKey("ensemble", 0, req)
	var cached engine.EnsemblePrediction
	if cacheable && h.lookup(ctx, key, &cached) {
		return ensembleResponse{EnsemblePrediction: &cached, Cached: true}, nil
	}
	pred, err := h.engine.PredictEnsemble(ctx, req.EnvironmentalData, req.PersonalParams)
	if err != nil {
		return ensembleResponse{}, err
	}
	h.store(ctx, key, cacheable, pred)
	return ensembleResponse{EnsemblePrediction: pred}, nil
}

func (h *PredictHandler) recordEnsemble(ctx context.Context, kind history.Kind, p *engine.EnsemblePrediction) {
	h.audit.Record(ctx, audit.Entry{
		Kind:       kind,
		SafeHours:  p.Ensemble.SafeHours,
		RiskScore:  p.Ensemble.RiskScore,
		RiskLevel:  string(p.Ensemble.RiskLevel),
		Confidence: p.Ensemble.Confidence,
		ModelsUsed: len(p.ModelsUsed),
		ClientID:   ctxutil.ClientID(ctx),
		RequestID:  ctxutil.RequestID(ctx),
		Payload:    p,
	})
}

type BatchItem struct {
	Name string `json:"name"`
	PredictRequest
}

type BatchRequest struct {
	Requests []BatchItem `json:"requests"`
}

type batchResult struct {
	RequestName  string          `json:"request_name"`
	RequestIndex int             `json:"request_index"`
	Success      bool            `json:"success"`
	Prediction   *engine.Summary `json:"prediction,omitempty"`
	Confidence   float64         `json:"confidence,omitempty"`
	Error        string          `json:"error,omitempty"`
	ErrorCode    string          `json:"error_code,omitempty"`
}

type batchSummary struct {
	TotalRequests         int     `json:"total_requests"`
	SuccessfulPredictions int     `json:"successful_predictions"`
	FailedPredictions     int     `json:"failed_predictions"`
	SuccessRate           float64 `json:"success_rate"`
	AverageConfidence     float64 `json:"average_confidence"`
	AverageSafeHours      float64 `json:"average_safe_hours"`
}

// PredictBatch handles POST /v1/predict/batch. Items run in order and fail
// independently.
func (h *PredictHandler) PredictBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apierr.BadRequest("invalid_json", "", err))
		return
	}
	if len(req.Requests) == 0 {
		response.RespondError(c, apierr.BadRequest("empty_batch", "requests", fmt.Errorf("request must contain a non-empty requests array")))
		return
	}
	if len(req.Requests) > h.batchLimit {
		response.RespondError(c, apierr.BadRequest("batch_too_large", "requests",
			fmt.Errorf("maximum %d requests per batch, received %d", h.batchLimit, len(req.Requests))))
		return
	}

	results := make([]batchResult, 0, len(req.Requests))
	var sum batchSummary
	for i, item := range req.Requests {
		name := item.Name
		if name == "" {
			name = fmt.Sprintf("Request_%d", i+1)
		}
		res := batchResult{RequestName: name, RequestIndex: i}
		if len(item.EnvironmentalData) == 0 {
			res.Error, res.ErrorCode = "missing environmental_data", "missing_environmental_data"
			results = append(results, res)
			continue
		}

		ctx, cancel := withTimeout(c.Request.Context(), h.timeout)
		out, err := h.ensemble(ctx, &item.PredictRequest)
		if err != nil {
			cancel()
			ae := apierr.From(engineError(err))
			res.Error, res.ErrorCode = err.Error(), ae.Code
			results = append(results, res)
			continue
		}
		h.recordEnsemble(ctx, history.KindBatch, out.EnsemblePrediction)
		cancel()

		summary := out.Ensemble
		res.Success = true
		res.Prediction = &summary
		res.Confidence = summary.Confidence
		sum.SuccessfulPredictions++
		sum.AverageConfidence += summary.Confidence
		sum.AverageSafeHours += summary.SafeHours
		results = append(results, res)
	}

	sum.TotalRequests = len(req.Requests)
	sum.FailedPredictions = sum.TotalRequests - sum.SuccessfulPredictions
	sum.SuccessRate = float64(sum.SuccessfulPredictions) / float64(sum.TotalRequests)
	if n := float64(sum.SuccessfulPredictions); n > 0 {
		sum.AverageConfidence /= n
		sum.AverageSafeHours /= n
	}
	c.JSON(http.StatusOK, gin.H{"batch_summary": sum, "results": results})
}

func (h *PredictHandler) cacheKey(kind string, groupID int, req *PredictRequest) (string, bool) {
	if h.cache == nil {
		return "", false
	}
	key, err := rediscache.Key(kind, groupID, h.engine.Threshold(), h.engine.Locale(), req.EnvironmentalData, req.PersonalParams)
	if err != nil {
		h.log.Debug("request not cacheable", "error", err)
		return "", false
	}
	return key, true
}

func (h *PredictHandler) lookup(ctx context.Context, key string, dst any) bool {
	ok, err := h.cache.Get(ctx, key, dst)
	if err != nil {
		h.log.Warn("cache read failed", "key", key, "error", err)
		return false
	}
	return ok
}

func (h *PredictHandler) store(ctx context.Context, key string, cacheable bool, v any) {
	if !cacheable {
		return
	}
	if err := h.cache.Set(ctx, key, v); err != nil {
		h.log.Warn("cache write failed", "key", key, "error", err)
	}
}
