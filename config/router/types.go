package router

import (
	"github.com/gin-gonic/gin"
)

type RequestContext = gin.Context

type MiddlewareFunc = gin.HandlerFunc

// ServiceResult is the outcome of one handler. ToJSON renders the public
// wire shape: successes serialize as {"success":true,"message":...} plus any
// extra fields, errors as {"error":...}. By the time a result exists the
// message is already client-safe; internal detail never crosses this
// boundary.
type ServiceResult struct {
	StatusCode int
	Message    string
	Data       any
	// Fields are merged into the top level of the JSON body, e.g. the "id"
	// of a newly created record.
	Fields map[string]any
}

type RateLimitResponse struct {
	Limit      int    `json:"limit"`
	Window     string `json:"window"`
	RetryAfter string `json:"retry_after"`
}

type HandlerFunction func(*RequestContext) *ServiceResult

type RESTController struct {
	name         string
	mountPoint   string
	version      string
	handlerCount int
	prepare      func(*RouterService, *RESTController)
}

func (result *ServiceResult) ToJSON() gin.H {
	var body gin.H

	if result.IsError() {
		body = gin.H{"error": result.Message}
		if result.Data != nil {
			body["details"] = result.Data
		}
	} else {
		body = gin.H{"success": true, "message": result.Message}
		if result.Data != nil {
			body["data"] = result.Data
		}
	}

	for k, v := range result.Fields {
		body[k] = v
	}

	return body
}

func (result *ServiceResult) IsSuccess() bool {
	return result.StatusCode >= 200 && result.StatusCode < 300
}

func (result *ServiceResult) IsError() bool {
	return result.StatusCode >= 400
}
