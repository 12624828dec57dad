package http

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// pageCursor is the opaque list cursor: the last seen row. ID carries for
// id-keyed tables, Mid for the device table.
type pageCursor struct {
	ID        int64     `json:"id,omitempty"`
	Mid       string    `json:"mid,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

func encodeCursor(cur pageCursor) string {
	blob, err := json.Marshal(cur)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(blob)
}

func decodeCursor(s string) (*pageCursor, error) {
	blob, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	var cur pageCursor
	if err := json.Unmarshal(blob, &cur); err != nil {
		return nil, err
	}
	return &cur, nil
}

func pageLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit < 1 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

// cursorParam decodes the cursor query param; nil when absent.
func cursorParam(c *gin.Context) (*pageCursor, error) {
	raw := c.Query("cursor")
	if raw == "" {
		return nil, nil
	}
	return decodeCursor(raw)
}

// timeParam parses an RFC3339 query param; nil when absent.
func timeParam(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
