package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/farellandr/thm-registration/internal/intake"
)

const intakeKey = "intake_pipeline"

func IntakeMiddleware(pipeline *intake.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(intakeKey, pipeline)
		c.Next()
	}
}

func GetIntake(c *gin.Context) *intake.Pipeline {
	pipeline, exists := c.Get(intakeKey)
	if !exists {
		return nil
	}
	return pipeline.(*intake.Pipeline)
}
