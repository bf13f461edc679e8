package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/thm-registration/internal/helpers"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, helpers.Response{
		Success:   true,
		Message:   "Server is running",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func NotFound(c *gin.Context) {
	helpers.RespondWithMessage(c, http.StatusNotFound, "Endpoint not found")
}
