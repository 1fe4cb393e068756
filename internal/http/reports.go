package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/jmehdipour/wa-assistant/internal/model"
	"github.com/jmehdipour/wa-assistant/internal/store"
	"github.com/jmehdipour/wa-assistant/internal/util"
	echo "github.com/labstack/echo/v4"
)

// listLogsHandler pages through the send log, newest first, optionally filtered by
// phone, status and type.
func listLogsHandler(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit := 50
		offset := 0
		if v := c.QueryParam("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
				limit = n
			}
		}
		if v := c.QueryParam("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}

		var status model.MessageStatus
		if raw := strings.TrimSpace(c.QueryParam("status")); raw != "" {
			tmp := model.MessageStatus(raw)
			if !tmp.Valid() {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid status"})
			}
			status = tmp
		}

		var typ model.MessageType
		if raw := strings.TrimSpace(c.QueryParam("type")); raw != "" {
			tmp, ok := model.ParseMessageType(raw)
			if !ok {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid type"})
			}
			typ = tmp
		}

		var phone string
		if raw := strings.TrimSpace(c.QueryParam("phone")); raw != "" {
			phone = util.NormalizePhone(raw, st.CountryCode())
		}

		entries := st.LogEntries()
		matched := make([]model.SendLogEntry, 0, limit)
		skipped := 0
		for i := len(entries) - 1; i >= 0 && len(matched) < limit; i-- {
			e := entries[i]
			if (phone != "" && e.Phone != phone) || (status != "" && e.Status != status) || (typ != "" && e.Type != typ) {
				continue
			}
			if skipped < offset {
				skipped++
				continue
			}
			matched = append(matched, e)
		}

		return c.JSON(http.StatusOK, map[string]any{
			"limit":   limit,
			"offset":  offset,
			"count":   len(matched),
			"results": matched,
		})
	}
}
