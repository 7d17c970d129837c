package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ekazakov/violation-registry/internal/metrics"
	"github.com/ekazakov/violation-registry/internal/model"
	"github.com/ekazakov/violation-registry/internal/queue"
	"github.com/ekazakov/violation-registry/internal/repository"
	"github.com/ekazakov/violation-registry/internal/role"
)

// ProtocolHandler implements the /v1/protocols endpoints. A protocol
// ties together a vehicle, its owner, the issuing inspector and the
// violation, all addressed by their natural keys on write.
type ProtocolHandler struct {
	Protocols  ProtocolStore
	Vehicles   VehicleStore
	Owners     OwnerStore
	Inspectors InspectorStore
	Violations ViolationStore
	Accounts   role.AccountStore
	Events     EventPublisher
}

func NewProtocolHandler(protocols ProtocolStore, vehicles VehicleStore, owners OwnerStore,
	inspectors InspectorStore, violations ViolationStore,
	accounts role.AccountStore, events EventPublisher) *ProtocolHandler {
	return &ProtocolHandler{
		Protocols:  protocols,
		Vehicles:   vehicles,
		Owners:     owners,
		Inspectors: inspectors,
		Violations: violations,
		Accounts:   accounts,
		Events:     events,
	}
}

type protocolRequest struct {
	Number             string `json:"number"`
	IssueDate          string `json:"issue_date"`
	IssueTime          string `json:"issue_time"`
	VehicleStateNumber string `json:"vehicle_state_number"`
	OwnerLastName      string `json:"owner_last_name"`
	OwnerFirstName     string `json:"owner_first_name"`
	InspectorLastName  string `json:"inspector_last_name"`
	InspectorFirstName string `json:"inspector_first_name"`
	ViolationName      string `json:"violation_name"`
	User               string `json:"user"`
	Version            int64  `json:"version"`
}

func (b *protocolRequest) validate(requireNumber bool) string {
	b.Number = strings.TrimSpace(b.Number)
	b.IssueDate = strings.TrimSpace(b.IssueDate)
	b.IssueTime = strings.TrimSpace(b.IssueTime)
	b.VehicleStateNumber = strings.TrimSpace(b.VehicleStateNumber)
	b.OwnerLastName = strings.TrimSpace(b.OwnerLastName)
	b.OwnerFirstName = strings.TrimSpace(b.OwnerFirstName)
	b.InspectorLastName = strings.TrimSpace(b.InspectorLastName)
	b.InspectorFirstName = strings.TrimSpace(b.InspectorFirstName)
	b.ViolationName = strings.TrimSpace(b.ViolationName)
	if requireNumber && b.Number == "" {
		return "number is required"
	}
	if !validDate(b.IssueDate) {
		return "issue_date must be YYYY-MM-DD"
	}
	normalized, ok := normalizeTime(b.IssueTime)
	if !ok {
		return "issue_time must be HH:MM or HH:MM:SS"
	}
	b.IssueTime = normalized
	if b.VehicleStateNumber == "" {
		return "vehicle_state_number is required"
	}
	if b.OwnerLastName == "" || b.OwnerFirstName == "" {
		return "owner name is required"
	}
	if b.InspectorLastName == "" || b.InspectorFirstName == "" {
		return "inspector name is required"
	}
	if b.ViolationName == "" {
		return "violation_name is required"
	}
	if b.User == "" {
		return "user is required"
	}
	return ""
}

func (h *ProtocolHandler) resolveRefs(c echo.Context, body *protocolRequest, p *model.Protocol) error {
	ctx := c.Request().Context()
	vehicle, err := h.Vehicles.FindByStateNumber(ctx, body.VehicleStateNumber)
	if err != nil {
		return repository.ErrInvalidReference
	}
	owner, err := h.Owners.FindByName(ctx, body.OwnerLastName, body.OwnerFirstName)
	if err != nil {
		return repository.ErrInvalidReference
	}
	inspector, err := h.Inspectors.FindByName(ctx, body.InspectorLastName, body.InspectorFirstName)
	if err != nil {
		return repository.ErrInvalidReference
	}
	violation, err := h.Violations.FindByName(ctx, body.ViolationName)
	if err != nil {
		return repository.ErrInvalidReference
	}
	p.VehicleID = vehicle.ID
	p.OwnerID = owner.ID
	p.InspectorID = inspector.ID
	p.ViolationID = violation.ID
	return nil
}

// List handles GET /v1/protocols.
func (h *ProtocolHandler) List(c echo.Context) error {
	protocols, err := h.Protocols.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, protocols)
}

// Get handles GET /v1/protocols/:id.
func (h *ProtocolHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	protocol, err := h.Protocols.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, protocol)
}

// Create handles POST /v1/protocols. Admins and inspectors.
func (h *ProtocolHandler) Create(c echo.Context) error {
	var body protocolRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := body.validate(true); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	ctx := c.Request().Context()
	if err := role.Authorize(ctx, h.Accounts, body.User, role.Admin, role.Inspector); err != nil {
		return respondError(c, err)
	}
	protocol := &model.Protocol{
		Number:    body.Number,
		IssueDate: body.IssueDate,
		IssueTime: body.IssueTime,
	}
	if err := h.resolveRefs(c, &body, protocol); err != nil {
		return respondError(c, err)
	}
	if err := h.Protocols.Create(ctx, protocol); err != nil {
		return respondError(c, err)
	}
	metrics.RecordCreated("protocol")
	publish(ctx, h.Events, "protocol", protocol.ID, queue.ActionCreated, body.User, protocol.Version)
	return c.JSON(http.StatusCreated, protocol)
}

// Update handles PUT /v1/protocols/:id. The protocol number is
// immutable.
func (h *ProtocolHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body protocolRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := body.validate(false); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	ctx := c.Request().Context()
	if err := role.Authorize(ctx, h.Accounts, body.User, role.Admin, role.Inspector); err != nil {
		return respondError(c, err)
	}
	protocol := model.Protocol{
		ID:        id,
		IssueDate: body.IssueDate,
		IssueTime: body.IssueTime,
		Version:   body.Version,
	}
	if err := h.resolveRefs(c, &body, &protocol); err != nil {
		return respondError(c, err)
	}
	newVersion, err := h.Protocols.Update(ctx, protocol, body.User)
	if err != nil {
		return respondError(c, err)
	}
	publish(ctx, h.Events, "protocol", id, queue.ActionUpdated, body.User, newVersion)
	return c.JSON(http.StatusOK, echo.Map{"status": "updated", "new_version": newVersion})
}
