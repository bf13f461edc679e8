package helpers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every endpoint answers with. Validation failures
// fill Errors; every other failure carries a single Error string.
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Errors    []string    `json:"errors,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp string      `json:"timestamp,omitempty"`
}

func RespondWithError(c *gin.Context, statusCode int, message string, detail string) {
	c.AbortWithStatusJSON(statusCode, Response{
		Success: false,
		Message: message,
		Error:   detail,
	})
}

func RespondWithMessage(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, Response{
		Success: false,
		Message: message,
	})
}

func RespondWithValidationErrors(c *gin.Context, errs []string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Response{
		Success: false,
		Message: "Validation failed",
		Errors:  errs,
	})
}

func RespondWithData(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}
