package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eduymaz/aller-mind/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError writes the error envelope and aborts the chain. Errors that
// are not *apierr.Error become 500 internal_error.
func RespondError(c *gin.Context, err error) {
	ae := apierr.From(err)
	msg := "unknown error"
	if ae.Err != nil {
		msg = ae.Err.Error()
	} else if ae.Code != "" {
		msg = ae.Code
	}
	if ae.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(ae.Status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    ae.Code,
			Param:   ae.Param,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
