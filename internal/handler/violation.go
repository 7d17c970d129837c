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

// ViolationHandler implements the /v1/violations endpoints. Violation
// types and articles are created on demand: a write naming an unknown
// type or article registers it instead of failing.
type ViolationHandler struct {
	Violations ViolationStore
	Refs       ReferenceStore
	Accounts   role.AccountStore
	Events     EventPublisher
}

func NewViolationHandler(violations ViolationStore, refs ReferenceStore,
	accounts role.AccountStore, events EventPublisher) *ViolationHandler {
	return &ViolationHandler{Violations: violations, Refs: refs, Accounts: accounts, Events: events}
}

type violationRequest struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	ArticleNumber string `json:"article_number"`
	ArticleName   string `json:"article_name"`
	User          string `json:"user"`
	Version       int64  `json:"version"`
}

func (b *violationRequest) validate() string {
	b.Name = strings.TrimSpace(b.Name)
	b.Type = strings.TrimSpace(b.Type)
	b.ArticleNumber = strings.TrimSpace(b.ArticleNumber)
	b.ArticleName = strings.TrimSpace(b.ArticleName)
	if b.Name == "" {
		return "name is required"
	}
	if b.Type == "" {
		return "type is required"
	}
	if b.ArticleNumber == "" || b.ArticleName == "" {
		return "article number and name are required"
	}
	if b.User == "" {
		return "user is required"
	}
	return ""
}

// List handles GET /v1/violations. An optional ?type= query filters by
// violation type name.
func (h *ViolationHandler) List(c echo.Context) error {
	typeName := strings.TrimSpace(c.QueryParam("type"))
	violations, err := h.Violations.List(c.Request().Context(), typeName)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, violations)
}

// Get handles GET /v1/violations/:id.
func (h *ViolationHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	violation, err := h.Violations.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, violation)
}

// ListTypes handles GET /v1/violations/types.
func (h *ViolationHandler) ListTypes(c echo.Context) error {
	types, err := h.Refs.ListTypes(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, types)
}

// ListArticles handles GET /v1/violations/articles.
func (h *ViolationHandler) ListArticles(c echo.Context) error {
	articles, err := h.Refs.ListArticles(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, articles)
}

func (h *ViolationHandler) resolveRefs(c echo.Context, body *violationRequest, v *model.Violation) error {
	ctx := c.Request().Context()
	typeID, err := h.Refs.EnsureType(ctx, body.Type)
	if err != nil {
		return err
	}
	articleID, err := h.Refs.EnsureArticle(ctx, body.ArticleNumber, body.ArticleName)
	if err != nil {
		return err
	}
	v.ViolationTypeID = typeID
	v.ArticleID = articleID
	return nil
}

// Create handles POST /v1/violations. Admins and inspectors.
func (h *ViolationHandler) Create(c echo.Context) error {
	var body violationRequest
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
	violation := &model.Violation{Name: body.Name}
	if err := h.resolveRefs(c, &body, violation); err != nil {
		return respondError(c, err)
	}
	if err := h.Violations.Create(ctx, violation); err != nil {
		return respondError(c, err)
	}
	metrics.RecordCreated("violation")
	publish(ctx, h.Events, "violation", violation.ID, queue.ActionCreated, body.User, violation.Version)
	return c.JSON(http.StatusCreated, violation)
}

// Update handles PUT /v1/violations/:id.
func (h *ViolationHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body violationRequest
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
	violation := model.Violation{ID: id, Name: body.Name, Version: body.Version}
	if err := h.resolveRefs(c, &body, &violation); err != nil {
		return respondError(c, err)
	}
	newVersion, err := h.Violations.Update(ctx, violation, body.User)
	if err != nil {
		return respondError(c, err)
	}
	publish(ctx, h.Events, "violation", id, queue.ActionUpdated, body.User, newVersion)
	return c.JSON(http.StatusOK, echo.Map{"status": "updated", "new_version": newVersion})
}
