package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ekazakov/violation-registry/internal/metrics"
	"github.com/ekazakov/violation-registry/internal/model"
	"github.com/ekazakov/violation-registry/internal/queue"
	"github.com/ekazakov/violation-registry/internal/role"
)

// OwnerHandler implements the /v1/owners endpoints.
type OwnerHandler struct {
	Owners   OwnerStore
	Accounts role.AccountStore
	Events   EventPublisher
}

func NewOwnerHandler(owners OwnerStore, accounts role.AccountStore, events EventPublisher) *OwnerHandler {
	return &OwnerHandler{Owners: owners, Accounts: accounts, Events: events}
}

type ownerRequest struct {
	LastName    string `json:"last_name"`
	FirstName   string `json:"first_name"`
	MiddleName  string `json:"middle_name"`
	DateOfBirth string `json:"date_of_birth"`
	Address     string `json:"address"`
	User        string `json:"user"`
	Version     int64  `json:"version"`
}

func (b *ownerRequest) validate() string {
	b.LastName = strings.TrimSpace(b.LastName)
	b.FirstName = strings.TrimSpace(b.FirstName)
	b.MiddleName = strings.TrimSpace(b.MiddleName)
	b.Address = strings.TrimSpace(b.Address)
	if b.LastName == "" || b.FirstName == "" || b.MiddleName == "" {
		return "full name is required"
	}
	if !validDate(b.DateOfBirth) {
		return "date_of_birth must be YYYY-MM-DD"
	}
	if b.Address == "" {
		return "address is required"
	}
	if b.User == "" {
		return "user is required"
	}
	return ""
}

// List handles GET /v1/owners. No authentication.
func (h *OwnerHandler) List(c echo.Context) error {
	owners, err := h.Owners.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, owners)
}

// Get handles GET /v1/owners/:id. Reading clears an expired lock as a
// side effect.
func (h *OwnerHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	owner, err := h.Owners.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, owner)
}

// Create handles POST /v1/owners. Admins and inspectors may add owners.
func (h *OwnerHandler) Create(c echo.Context) error {
	var body ownerRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	ctx := c.Request().Context()
	if err := role.Authorize(ctx, h.Accounts, body.User, role.Admin, role.Inspector); err != nil {
		return respondError(c, err)
	}
	owner := &model.Owner{
		LastName:    body.LastName,
		FirstName:   body.FirstName,
		MiddleName:  body.MiddleName,
		DateOfBirth: body.DateOfBirth,
		Address:     body.Address,
	}
	if err := h.Owners.Create(ctx, owner); err != nil {
		return respondError(c, err)
	}
	metrics.RecordCreated("owner")
	publish(ctx, h.Events, "owner", owner.ID, queue.ActionCreated, body.User, owner.Version)
	return c.JSON(http.StatusCreated, owner)
}

// Update handles PUT /v1/owners/:id. The request carries the version
// the client last observed; a stale version or a live foreign lock
// rejects the write unchanged. A successful update increments the
// version and releases the lock.
func (h *OwnerHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body ownerRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	ctx := c.Request().Context()
	if err := role.Authorize(ctx, h.Accounts, body.User, role.Admin, role.Inspector); err != nil {
		return respondError(c, err)
	}
	owner := model.Owner{
		ID:          id,
		LastName:    body.LastName,
		FirstName:   body.FirstName,
		MiddleName:  body.MiddleName,
		DateOfBirth: body.DateOfBirth,
		Address:     body.Address,
		Version:     body.Version,
	}
	newVersion, err := h.Owners.Update(ctx, owner, body.User)
	if err != nil {
		return respondError(c, err)
	}
	publish(ctx, h.Events, "owner", id, queue.ActionUpdated, body.User, newVersion)
	return c.JSON(http.StatusOK, echo.Map{"status": "updated", "new_version": newVersion})
}
