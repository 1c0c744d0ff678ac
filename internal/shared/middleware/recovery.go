package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"coachhub-backend/internal/shared/response"
)

// Recovery turns a handler panic into a SYS_001 error envelope instead of
// a dropped connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().
					Str("request_id", c.GetString("request_id")).
					Str("path", c.Request.URL.Path).
					Interface("panic", rec).
					Msg("recovered from handler panic")

				response.ErrorResponse(c, http.StatusInternalServerError, "SYS_001", "internal server error")
				c.Abort()
			}
		}()

		c.Next()
	}
}
