package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/promodash/internal/apperr"
)

const msgInvalidBody = "Invalid request body"

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

// respondFailure writes the failure envelope with the underlying cause as details.
func respondFailure(c *gin.Context, status int, message string, err error) {
	body := gin.H{"success": false, "error": message}
	if err != nil {
		body["details"] = apperr.Cause(err)
	}
	c.JSON(status, body)
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, msgInvalidBody)
		return false
	}
	return true
}

func idParam(c *gin.Context) string {
	return strings.TrimSpace(c.Param("id"))
}

// pageQuery reads ?page=N, defaulting to 1 for missing or malformed values.
func pageQuery(c *gin.Context) int {
	raw := strings.TrimSpace(c.Query("page"))
	if raw == "" {
		return 1
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}
