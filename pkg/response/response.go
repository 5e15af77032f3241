package response

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/bbarathsrinivasan/ACMHack/pkg/errors"
)

// Envelope represents the common response contract.
type Envelope struct {
	Data  interface{}            `json:"data,omitempty"`
	Error *appErrors.Error       `json:"error,omitempty"`
	Meta  map[string]interface{} `json:"meta,omitempty"`
}

// JSON sends a success response with optional metadata.
func JSON(c *gin.Context, status int, data interface{}, meta ...map[string]interface{}) {
	noStore(c)
	envelope := Envelope{Data: data}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// Versioned sends data stamped with the collection version as both ETag and meta.version.
func Versioned(c *gin.Context, status int, data interface{}, version string, meta ...map[string]interface{}) {
	merged := map[string]interface{}{}
	if len(meta) > 0 {
		for k, v := range meta[0] {
			merged[k] = v
		}
	}
	if version != "" {
		SetETag(c, version)
		merged["version"] = version
	}
	JSON(c, status, data, merged)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Error sends an error response converting the error to the common structure.
// Conflicts carrying a version detail also expose it through the ETag header.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if version := appErr.Detail("version"); version != "" {
		SetETag(c, version)
	}
	noStore(c)
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// NoContent sends a 204 response, stamping the new version when provided.
func NoContent(c *gin.Context, version ...string) {
	if len(version) > 0 && version[0] != "" {
		SetETag(c, version[0])
	}
	noStore(c)
	c.Status(http.StatusNoContent)
}

// NotModified answers a conditional read whose version is unchanged.
func NotModified(c *gin.Context, version string) {
	SetETag(c, version)
	c.Status(http.StatusNotModified)
}

// SetETag writes version as a strong entity tag.
func SetETag(c *gin.Context, version string) {
	c.Header("ETag", strconv.Quote(version))
}

// ParseETag extracts the bare version from an If-Match or If-None-Match header value.
// Weak validators and the wildcard are reduced to an empty version.
func ParseETag(header string) string {
	value := strings.TrimSpace(header)
	if value == "" || value == "*" {
		return ""
	}
	value = strings.TrimPrefix(value, "W/")
	if idx := strings.IndexByte(value, ','); idx >= 0 {
		value = strings.TrimSpace(value[:idx])
	}
	return strings.Trim(value, `"`)
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
