package utils

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type RequestError struct {
	StatusCode int
	Err        error
}

func (r *RequestError) Error() string {
	return fmt.Sprintf("[%d] %v", r.StatusCode, r.Err)
}

func NewRequestError(statusCode int, err error) *RequestError {
	return &RequestError{StatusCode: statusCode, Err: err}
}

// Response pairs a body with an explicit status code, so handlers can
// return 201/202/204 without touching the gin context directly.
type Response struct {
	StatusCode int
	Body       interface{}
}

func Respond(statusCode int, body interface{}) *Response {
	return &Response{StatusCode: statusCode, Body: body}
}

type WrappedRequestFn func(c *gin.Context) (*Response, error)

func WrapRequest(fn WrappedRequestFn) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := fn(c)

		if c.IsAborted() {
			// NOOP
			return
		}

		if err != nil {
			if err, ok := err.(*RequestError); ok {
				statusCode := err.StatusCode
				if statusCode <= 0 {
					statusCode = http.StatusInternalServerError
				}
				c.AbortWithStatusJSON(statusCode, gin.H{"detail": err.Err.Error()})
				return
			}

			c.AbortWithError(http.StatusInternalServerError, err)
			return
		}

		if result == nil {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		statusCode := result.StatusCode
		if statusCode <= 0 {
			statusCode = http.StatusOK
		}

		if result.Body == nil {
			c.AbortWithStatus(statusCode)
			return
		}

		c.AbortWithStatusJSON(statusCode, result.Body)
	}
}

func GetGinLoggerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {

		// Start timer
		start := time.Now()
		path := c.Request.URL.Path

		// Process request
		c.Next()

		statusCode := c.Writer.Status()

		clientIP := c.ClientIP()
		method := c.Request.Method

		if statusCode == http.StatusOK && method == http.MethodOptions {
			// Do not log useless entries
			return
		}

		elapsedMS := time.Now().Sub(start).Milliseconds()

		comment := c.Errors.ByType(gin.ErrorTypePrivate).String()

		logrus.WithFields(logrus.Fields{
			"statusCode": statusCode,
			"path":       path,
			"elapsedMS":  elapsedMS,
			"clientIP":   clientIP,
			"method":     method,
			"comment":    comment,
			"userAgent":  c.Request.UserAgent(),
		}).Info(fmt.Sprintf("[GIN] %3d | %13vms | %s %-7s | %s",
			statusCode,
			elapsedMS,
			method,
			path,
			comment,
		))

	}
}
