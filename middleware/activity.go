package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/planpulse/planpulse/models"
	"github.com/planpulse/planpulse/utils"
)

// ActivityRecorder counts successful API requests per civil day and path.
// The stats endpoint reports these counts as a rough activity signal.
func ActivityRecorder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method != "GET" {
			return
		}
		status := c.Writer.Status()
		if status < 200 || status >= 400 {
			return
		}

		path := c.Request.URL.Path
		// health probes and static assets would drown out real usage
		if path == "/health" || strings.HasPrefix(path, "/static/") {
			return
		}

		day := utils.Today()

		// Atomic upsert to avoid duplicate key errors under concurrency
		_ = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}, {Name: "path"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("count + 1"), "updated_at": time.Now()}),
		}).Create(&models.ApiActivity{Date: day, Path: path, Count: 1}).Error
	}
}
