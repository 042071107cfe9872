package api

import (
	"alcyxob/fitcoach/internal/service"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// pathID parses an ObjectID path parameter, aborting with 400 on failure.
func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s format", name))
		return primitive.NilObjectID, false
	}
	return id, true
}

// queryID parses an optional ObjectID query parameter.
func queryID(c *gin.Context, name string) (*primitive.ObjectID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s format", name))
		return nil, false
	}
	return &id, true
}

func queryInt(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s", name))
		return 0, false
	}
	return v, true
}

// queryPage reads page and limit; out-of-range values are clamped.
func queryPage(c *gin.Context) (service.Page, bool) {
	number, ok := queryInt(c, "page")
	if !ok {
		return service.Page{}, false
	}
	size, ok := queryInt(c, "limit")
	if !ok {
		return service.Page{}, false
	}
	return service.NewPage(number, size), true
}

// bindJSON binds and validates the body against its binding tags.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return false
	}
	return true
}

// parseDate accepts a calendar day (2006-01-02) or an RFC 3339 timestamp.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// dateField parses a required date, aborting with 400 on failure.
func dateField(c *gin.Context, name, raw string) (time.Time, bool) {
	t, err := parseDate(raw)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s, expected YYYY-MM-DD or RFC 3339", name))
		return time.Time{}, false
	}
	return t, true
}
