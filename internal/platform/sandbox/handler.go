package sandbox

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinic-admin/internal/clinicapi"
	"github.com/clinicdesk/clinic-admin/pkg/pagination"
)

// Handler serves the clinic endpoint protocol from a Store.
type Handler struct {
	store *Store
	mu    sync.Mutex
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the clinic endpoint at "/" and the data management
// routes under "/sandbox".
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.handleEndpoint)
	e.POST("/", h.handleEndpoint)
	e.PUT("/", h.handleEndpoint)
	e.DELETE("/", h.handleEndpoint)

	g := e.Group("/sandbox")
	g.POST("/seed", h.handleSeed)
	g.POST("/reset", h.handleReset)
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func (h *Handler) handleEndpoint(c echo.Context) error {
	name := clinicapi.Endpoint(c.QueryParam("endpoint"))
	if name == "" {
		name = clinicapi.EndpointStats
	}
	method := c.Request().Method

	if name == clinicapi.EndpointStats {
		if method != http.MethodGet {
			return c.JSON(http.StatusMethodNotAllowed, errorBody("Method not allowed"))
		}
		return c.JSON(http.StatusOK, h.store.Stats())
	}
	if _, ok := h.store.endpoint(name); !ok {
		return c.JSON(http.StatusBadRequest, errorBody(errUnknownEndpoint.Error()))
	}

	switch method {
	case http.MethodGet:
		rows, err := h.store.List(name, query{
			search: c.QueryParam("search"),
			status: c.QueryParam("status"),
			page:   pagination.FromContext(c),
		})
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, rows)

	case http.MethodPost:
		raw, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return readError(c, err)
		}
		key, id, err := h.store.Create(name, raw)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"success": true, key: id})

	case http.MethodPut:
		raw, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return readError(c, err)
		}
		if err := h.store.Update(name, raw); err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"success": true})

	case http.MethodDelete:
		id, err := strconv.ParseInt(c.QueryParam("id"), 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorBody("invalid id"))
		}
		if err := h.store.Delete(name, id); err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
	}
	return c.JSON(http.StatusMethodNotAllowed, errorBody("Method not allowed"))
}

func readError(c echo.Context, err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
}

func writeError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrReadOnly):
		status = http.StatusMethodNotAllowed
	case errors.Is(err, ErrBadPayload), errors.Is(err, ErrMissingID), errors.Is(err, errUnknownEndpoint):
		status = http.StatusBadRequest
	}
	return c.JSON(status, errorBody(err.Error()))
}

func (h *Handler) handleSeed(c echo.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	cfg := DefaultSeedConfig()
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&cfg); err != nil {
			return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		}
	}
	return c.JSON(http.StatusOK, h.store.Seed(cfg))
}

func (h *Handler) handleReset(c echo.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.store.Reset()
	return c.JSON(http.StatusOK, map[string]string{"status": "reset"})
}
