package respond

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

var apiVersion = "1.0.0"

// SetAPIVersion overrides the api_version carried in every envelope. Called
// once at bootstrap.
func SetAPIVersion(v string) {
	if v != "" {
		apiVersion = v
	}
}

type successBody struct {
	Status     string `json:"status"`
	Data       any    `json:"data"`
	Timestamp  int64  `json:"timestamp"`
	APIVersion string `json:"api_version"`
}

type errorBody struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	Code       int    `json:"code"`
	Timestamp  int64  `json:"timestamp"`
	APIVersion string `json:"api_version"`
}

// Success writes the uniform success envelope and terminates the handler
// chain; nothing may write to the response after this.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, successBody{
		Status:     "success",
		Data:       data,
		Timestamp:  time.Now().Unix(),
		APIVersion: apiVersion,
	})
	c.Abort()
}

// Error writes the uniform error envelope with the given HTTP status and
// terminates the handler chain.
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, errorBody{
		Status:     "error",
		Message:    message,
		Code:       code,
		Timestamp:  time.Now().Unix(),
		APIVersion: apiVersion,
	})
	c.Abort()
}
