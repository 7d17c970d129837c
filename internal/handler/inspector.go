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

// InspectorHandler implements the /v1/inspectors endpoints. Unlike the
// other entities, inspector writes are admin-only.
type InspectorHandler struct {
	Inspectors InspectorStore
	Accounts   role.AccountStore
	Events     EventPublisher
}

func NewInspectorHandler(inspectors InspectorStore, accounts role.AccountStore, events EventPublisher) *InspectorHandler {
	return &InspectorHandler{Inspectors: inspectors, Accounts: accounts, Events: events}
}

type inspectorRequest struct {
	LastName   string `json:"last_name"`
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name"`
	Department string `json:"department"`
	Rank       string `json:"rank"`
	User       string `json:"user"`
	Version    int64  `json:"version"`
}

func (b *inspectorRequest) validate() string {
	b.LastName = strings.TrimSpace(b.LastName)
	b.FirstName = strings.TrimSpace(b.FirstName)
	b.MiddleName = strings.TrimSpace(b.MiddleName)
	b.Department = strings.TrimSpace(b.Department)
	b.Rank = strings.TrimSpace(b.Rank)
	if b.LastName == "" || b.FirstName == "" || b.MiddleName == "" {
		return "full name is required"
	}
	if b.Department == "" || b.Rank == "" {
		return "department and rank are required"
	}
	if b.User == "" {
		return "user is required"
	}
	return ""
}

// List handles GET /v1/inspectors. No authentication.
func (h *InspectorHandler) List(c echo.Context) error {
	inspectors, err := h.Inspectors.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, inspectors)
}

// Get handles GET /v1/inspectors/:id.
func (h *InspectorHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	inspector, err := h.Inspectors.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, inspector)
}

// Create handles POST /v1/inspectors. Admin only.
func (h *InspectorHandler) Create(c echo.Context) error {
	var body inspectorRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	ctx := c.Request().Context()
	if err := role.Authorize(ctx, h.Accounts, body.User, role.Admin); err != nil {
		return respondError(c, err)
	}
	inspector := &model.Inspector{
		LastName:   body.LastName,
		FirstName:  body.FirstName,
		MiddleName: body.MiddleName,
		Department: body.Department,
		Rank:       body.Rank,
	}
	if err := h.Inspectors.Create(ctx, inspector); err != nil {
		return respondError(c, err)
	}
	metrics.RecordCreated("inspector")
	publish(ctx, h.Events, "inspector", inspector.ID, queue.ActionCreated, body.User, inspector.Version)
	return c.JSON(http.StatusCreated, inspector)
}

// Update handles PUT /v1/inspectors/:id. Admin only.
func (h *InspectorHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body inspectorRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	ctx := c.Request().Context()
	if err := role.Authorize(ctx, h.Accounts, body.User, role.Admin); err != nil {
		return respondError(c, err)
	}
	inspector := model.Inspector{
		ID:         id,
		LastName:   body.LastName,
		FirstName:  body.FirstName,
		MiddleName: body.MiddleName,
		Department: body.Department,
		Rank:       body.Rank,
		Version:    body.Version,
	}
	newVersion, err := h.Inspectors.Update(ctx, inspector, body.User)
	if err != nil {
		return respondError(c, err)
	}
	publish(ctx, h.Events, "inspector", id, queue.ActionUpdated, body.User, newVersion)
	return c.JSON(http.StatusOK, echo.Map{"status": "updated", "new_version": newVersion})
}
