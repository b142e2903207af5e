package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/eduymaz/aller-mind/internal/http/handlers"
	httpMW "github.com/eduymaz/aller-mind/internal/http/middleware"
	"github.com/eduymaz/aller-mind/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	CORSOrigins    []string
	MaxBodyBytes   int64
	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler  *httpH.HealthHandler
	ModelHandler   *httpH.ModelHandler
	PredictHandler *httpH.PredictHandler
	HistoryHandler *httpH.HistoryHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(httpMW.Recover(cfg.Log))
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.MaxBodyBytes(cfg.MaxBodyBytes))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	v1 := r.Group("/v1")
	if cfg.AuthMiddleware != nil {
		v1.Use(cfg.AuthMiddleware.RequireAuth())
	}

	// Models
	if cfg.ModelHandler != nil {
		v1.GET("/models", cfg.ModelHandler.ListModels)
		v1.GET("/groups", cfg.ModelHandler.ListGroups)
	}

	// Predictions
	if cfg.PredictHandler != nil {
		v1.POST("/predict/group/:id", cfg.PredictHandler.PredictGroup)
		v1.POST("/predict/ensemble", cfg.PredictHandler.PredictEnsemble)
		v1.POST("/predict/batch", cfg.PredictHandler.PredictBatch)
		v1.POST("/predict/assess", cfg.PredictHandler.Assess)
		v1.GET("/predict/demo", cfg.PredictHandler.Demo)
	}

	// History
	if cfg.HistoryHandler != nil {
		v1.GET("/history", cfg.HistoryHandler.List)
		v1.GET("/history/summary", cfg.HistoryHandler.Summary)
	}

	return r
}
