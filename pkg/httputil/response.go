package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response wraps all API responses
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Status: "success", Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Status: "success", Data: data})
}

func Error(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Status: "error", Message: message})
}
