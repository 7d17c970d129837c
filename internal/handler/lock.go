package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ekazakov/violation-registry/internal/repository"
)

// Kind names a lockable record family as it appears in lock URLs.
type Kind string

const (
	KindOwner         Kind = "owner"
	KindInspector     Kind = "inspector"
	KindVehicle       Kind = "vehicle"
	KindViolation     Kind = "violation"
	KindProtocol      Kind = "protocol"
	KindModel         Kind = "model"
	KindColor         Kind = "color"
	KindArticle       Kind = "article"
	KindViolationType Kind = "violation_type"
)

// ParseKind maps a URL segment to a Kind. Plural forms are accepted
// so the generic route composes with the entity collections.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "owner", "owners":
		return KindOwner, true
	case "inspector", "inspectors":
		return KindInspector, true
	case "vehicle", "vehicles":
		return KindVehicle, true
	case "violation", "violations":
		return KindViolation, true
	case "protocol", "protocols":
		return KindProtocol, true
	case "model", "models":
		return KindModel, true
	case "color", "colors":
		return KindColor, true
	case "article", "articles":
		return KindArticle, true
	case "violation_type", "violation_types":
		return KindViolationType, true
	}
	return "", false
}

// LockHandler serves the soft-lock endpoints for every lockable
// record family through one table of stores.
type LockHandler struct {
	stores map[Kind]LockStore
}

func NewLockHandler(stores map[Kind]LockStore) *LockHandler {
	return &LockHandler{stores: stores}
}

func (h *LockHandler) acquire(c echo.Context, k Kind) error {
	store, ok := h.stores[k]
	if !ok {
		return respondError(c, repository.ErrUnknownEntity)
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	user, ok := queryUser(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user is required"})
	}
	if err := store.AcquireLock(c.Request().Context(), id, user); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "locked"})
}

func (h *LockHandler) release(c echo.Context, k Kind) error {
	store, ok := h.stores[k]
	if !ok {
		return respondError(c, repository.ErrUnknownEntity)
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	user, ok := queryUser(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user is required"})
	}
	if err := store.ReleaseLock(c.Request().Context(), id, user); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "unlocked"})
}

// Lock handles POST /v1/lock/:entity/:id?user=.
func (h *LockHandler) Lock(c echo.Context) error {
	k, ok := ParseKind(c.Param("entity"))
	if !ok {
		return respondError(c, repository.ErrUnknownEntity)
	}
	return h.acquire(c, k)
}

// Unlock handles POST /v1/unlock/:entity/:id?user=.
func (h *LockHandler) Unlock(c echo.Context) error {
	k, ok := ParseKind(c.Param("entity"))
	if !ok {
		return respondError(c, repository.ErrUnknownEntity)
	}
	return h.release(c, k)
}

// LockFor returns a handler bound to one record family, used by the
// per-collection lock routes.
func (h *LockHandler) LockFor(k Kind) echo.HandlerFunc {
	return func(c echo.Context) error { return h.acquire(c, k) }
}

// UnlockFor is the release counterpart of LockFor.
func (h *LockHandler) UnlockFor(k Kind) echo.HandlerFunc {
	return func(c echo.Context) error { return h.release(c, k) }
}
