package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

// RespondError maps an AppError to its HTTP status and error kind;
// anything else becomes a 500.
func RespondError(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Kind.HTTPStatus(), JSONResponse{
			Status:  false,
			Message: appErr.Message,
			Error:   string(appErr.Kind),
		})
		return
	}
	c.JSON(http.StatusInternalServerError, JSONResponse{
		Status:  false,
		Message: err.Error(),
		Error:   "Internal",
	})
}
