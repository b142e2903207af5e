package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eduymaz/aller-mind/internal/http/response"
	"github.com/eduymaz/aller-mind/internal/platform/apierr"
	"github.com/eduymaz/aller-mind/internal/platform/logger"
)

func Recover(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		log.Error("panic serving request", "path", c.Request.URL.Path, "panic", fmt.Sprint(rec))
		response.RespondError(c, apierr.New(http.StatusInternalServerError, "internal_error", fmt.Errorf("internal error")))
	})
}
