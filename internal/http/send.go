package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/jmehdipour/wa-assistant/internal/http/middleware"
	"github.com/jmehdipour/wa-assistant/internal/service/messenger"
	"github.com/jmehdipour/wa-assistant/internal/util"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

const maxTextRunes = 4096

type sendReq struct {
	Phone string `json:"phone"`
	Group string `json:"group"`
	Text  string `json:"text"`
}

// sendHandler sends to one phone synchronously, or to a whole group in the background
// (202) since a group send sleeps between recipients.
func sendHandler(msg *messenger.Service, background func(func(ctx context.Context))) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req sendReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}

		req.Phone = strings.TrimSpace(req.Phone)
		req.Group = strings.TrimSpace(req.Group)
		req.Text = strings.TrimSpace(req.Text)

		// Basic validation
		if req.Text == "" || (req.Phone == "") == (req.Group == "") {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}

		if utf8.RuneCountInString(req.Text) > maxTextRunes {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "text too long"})
		}

		clientID, _ := middleware.ClientIDFromCtx(c)

		if req.Group != "" {
			group, text := req.Group, req.Text
			background(func(ctx context.Context) {
				if _, err := msg.Broadcast(ctx, group, text); err != nil {
					log.Errorf("broadcast to %q stopped: %v", group, err)
				}
			})
			return c.JSON(http.StatusAccepted, map[string]any{
				"accepted": true,
				"group":    req.Group,
				"client":   clientID,
			})
		}

		phone, err := msg.SendInstant(c.Request().Context(), req.Phone, req.Text)
		if err != nil {
			switch {
			case errors.Is(err, util.ErrInvalidPhone):
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid phone"})
			case errors.Is(err, messenger.ErrDeliveryFailed):
				return c.JSON(http.StatusBadGateway, map[string]any{
					"sent":  false,
					"phone": phone,
					"error": "delivery failed",
				})
			}

			log.Errorf("send failed: %v", err)

			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "send error"})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"sent":   true,
			"phone":  phone,
			"client": clientID,
		})
	}
}

func statsHandler(msg *messenger.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, msg.Stats())
	}
}
