package provider

import (
	"fmt"
	"strings"
)

// HTTPStatusError 表示站点返回了非 200 的 HTTP 状态码。
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Location   string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	loc := strings.TrimSpace(e.Location)
	if loc == "" {
		return fmt.Sprintf("HTTP Error: %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP Error: %d location=%s", e.StatusCode, loc)
}
