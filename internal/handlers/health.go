package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/evanshaw/resguard/pkg/response"
)

// Health reports liveness plus whether the permission store is reachable.
// Checks fail closed when storage is down, so readiness must track the
// database and not just the process.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload := gin.H{"status": "ok", "database": "ok"}
		code := http.StatusOK

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(requestContext(c))
		}
		if err != nil {
			payload["status"] = "degraded"
			payload["database"] = "unreachable"
			code = http.StatusServiceUnavailable
		}

		response.Success(c, code, payload)
	}
}
