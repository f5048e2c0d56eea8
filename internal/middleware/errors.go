package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/Domenick1991/tripoffice/internal/apperror"
	"github.com/gin-gonic/gin"
)

type ErrorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Fail aborts the request with the public form of err. Unexpected causes are only logged.
func Fail(c *gin.Context, err error) {
	status, message := apperror.Public(err)
	if status >= http.StatusInternalServerError {
		log.Printf("ERROR: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, body(status, message))
}

func body(status int, message string) ErrorBody {
	kind := "fail"
	if status >= http.StatusInternalServerError {
		kind = "error"
	}
	return ErrorBody{Status: kind, Message: message}
}

func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Printf("PANIC: %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, body(http.StatusInternalServerError, apperror.GenericMessage))
	})
}

func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, body(http.StatusNotFound, "Can't find "+c.Request.URL.Path+" on this server"))
	}
}

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("%s %s -> %d (%dms) %s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Milliseconds(), c.ClientIP())
	}
}
