package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jmehdipour/wa-assistant/internal/metrics"
	"github.com/jmehdipour/wa-assistant/internal/store"
	"github.com/jmehdipour/wa-assistant/internal/util"
	echo "github.com/labstack/echo/v4"
)

type addContactReq struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Group string `json:"group"`
}

func listContactsHandler(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		contacts := st.ListContacts()
		if g := strings.TrimSpace(c.QueryParam("group")); g != "" {
			contacts = st.ListContactsByGroup(g)
		}
		return c.JSON(http.StatusOK, map[string]any{
			"count":   len(contacts),
			"results": contacts,
		})
	}
}

func addContactHandler(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req addContactReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" || strings.TrimSpace(req.Phone) == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "name and phone are required"})
		}

		contact, err := st.AddContact(req.Name, req.Phone, req.Group)
		switch {
		case err == nil:
			metrics.ContactsTotal.WithLabelValues("added").Inc()
			return c.JSON(http.StatusCreated, contact)
		case errors.Is(err, store.ErrDuplicateContact):
			metrics.ContactsTotal.WithLabelValues("duplicate").Inc()
			return c.JSON(http.StatusConflict, map[string]string{"error": "contact already exists"})
		case errors.Is(err, util.ErrInvalidPhone):
			metrics.ContactsTotal.WithLabelValues("invalid").Inc()
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid phone"})
		default:
			c.Logger().Errorf("add contact failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "store error"})
		}
	}
}
