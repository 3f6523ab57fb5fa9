package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smartcanteen/canteen-app/utils"
)

// StaffKeyRequired guards staff-only routes. There is no user account
// system; staff capability is a shared API key passed in the X-Staff-Key
// header, matched against the configured value.
func StaffKeyRequired(staffKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if staffKey == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, utils.JSONResponse{
				Status:  false,
				Message: "staff access is not configured",
			})
			return
		}
		if c.GetHeader("X-Staff-Key") != staffKey {
			c.AbortWithStatusJSON(http.StatusForbidden, utils.JSONResponse{
				Status:  false,
				Message: "staff access required",
			})
			return
		}
		c.Next()
	}
}
