package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/eduymaz/aller-mind/internal/inference/engine"
	"github.com/eduymaz/aller-mind/internal/inference/model"
	"github.com/eduymaz/aller-mind/internal/inference/registry"
	"github.com/eduymaz/aller-mind/internal/platform/apierr"
)

// ModelCatalog is the read side of the model registry.
type ModelCatalog interface {
	Get(groupID int) (*model.Model, bool)
	Available() []int
	Len() int
	Info() []registry.ModelInfo
	Failures() []registry.Failure
}

// engineError maps prediction failures onto API errors.
func engineError(err error) error {
	switch {
	case errors.Is(err, engine.ErrInvalidGroup):
		return apierr.BadRequest("invalid_group", "id", err)
	case errors.Is(err, engine.ErrGroupUnavailable):
		return apierr.NotFound("group_unavailable", err)
	case errors.Is(err, engine.ErrNoReliableModels):
		return apierr.Unprocessable("no_reliable_models", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apierr.New(http.StatusGatewayTimeout, "prediction_timeout", err)
	case errors.Is(err, context.Canceled):
		return apierr.Unavailable("request_cancelled", err)
	default:
		return apierr.New(http.StatusInternalServerError, "prediction_failed", err)
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

var errNoBody = fmt.Errorf("request body must contain environmental_data and optional personal_params")
