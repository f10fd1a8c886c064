package response

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/cohort-analytics-api/pkg/errors"
)

// Header names carrying response metadata.
const (
	HeaderCacheHit       = "X-Cache-Hit"
	HeaderProcessingTime = "X-Processing-Time-Ms"
)

// ErrorBody is the JSON contract for failed requests.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// JSON sends the payload as-is; meta entries are surfaced as headers.
func JSON(c *gin.Context, status int, data interface{}, meta ...map[string]interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	if len(meta) > 0 && meta[0] != nil {
		writeMeta(c, meta[0])
	}
	c.JSON(status, data)
}

// Attachment streams a rendered file to the client.
func Attachment(c *gin.Context, filename, contentType string, body []byte) {
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Data(http.StatusOK, contentType, body)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	if appErr.Err != nil {
		_ = c.Error(appErr.Err)
	}
	c.JSON(appErr.Status, ErrorBody{Error: appErr.Message, Code: appErr.Code})
}

func writeMeta(c *gin.Context, meta map[string]interface{}) {
	if hit, ok := meta["cache_hit"].(bool); ok {
		c.Header(HeaderCacheHit, strconv.FormatBool(hit))
	}
	if ms, ok := meta["processing_time_ms"].(int64); ok {
		c.Header(HeaderProcessingTime, strconv.FormatInt(ms, 10))
	}
}
