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

// VehicleHandler implements the /v1/vehicles endpoints, including the
// reference lists (models, colors) and the admin-only delete.
type VehicleHandler struct {
	Vehicles VehicleStore
	Owners   OwnerStore
	Refs     ReferenceStore
	Accounts role.AccountStore
	Events   EventPublisher
}

func NewVehicleHandler(vehicles VehicleStore, owners OwnerStore, refs ReferenceStore,
	accounts role.AccountStore, events EventPublisher) *VehicleHandler {
	return &VehicleHandler{Vehicles: vehicles, Owners: owners, Refs: refs, Accounts: accounts, Events: events}
}

type vehicleRequest struct {
	StateNumber    string `json:"state_number"`
	ModelName      string `json:"model_name"`
	BrandName      string `json:"brand_name"`
	ColorName      string `json:"color_name"`
	OwnerLastName  string `json:"owner_last_name"`
	OwnerFirstName string `json:"owner_first_name"`
	User           string `json:"user"`
	Version        int64  `json:"version"`
}

func (b *vehicleRequest) validate(requirePlate bool) string {
	b.StateNumber = strings.TrimSpace(b.StateNumber)
	b.ModelName = strings.TrimSpace(b.ModelName)
	b.BrandName = strings.TrimSpace(b.BrandName)
	b.ColorName = strings.TrimSpace(b.ColorName)
	b.OwnerLastName = strings.TrimSpace(b.OwnerLastName)
	b.OwnerFirstName = strings.TrimSpace(b.OwnerFirstName)
	if requirePlate && b.StateNumber == "" {
		return "state_number is required"
	}
	if b.ModelName == "" || b.BrandName == "" || b.ColorName == "" {
		return "model, brand and color are required"
	}
	if b.OwnerLastName == "" || b.OwnerFirstName == "" {
		return "owner name is required"
	}
	if b.User == "" {
		return "user is required"
	}
	return ""
}

// resolveRefs resolves the model, color and owner natural keys into
// foreign-key ids. Any miss rejects the whole write with
// ErrInvalidReference so no partial mutation can occur.
func (h *VehicleHandler) resolveRefs(c echo.Context, body *vehicleRequest, v *model.Vehicle) error {
	ctx := c.Request().Context()
	carModel, err := h.Refs.FindModel(ctx, body.ModelName, body.BrandName)
	if err != nil {
		return repository.ErrInvalidReference
	}
	color, err := h.Refs.FindColor(ctx, body.ColorName)
	if err != nil {
		return repository.ErrInvalidReference
	}
	owner, err := h.Owners.FindByName(ctx, body.OwnerLastName, body.OwnerFirstName)
	if err != nil {
		return repository.ErrInvalidReference
	}
	v.ModelID = carModel.ID
	v.ColorID = color.ID
	v.OwnerID = owner.ID
	return nil
}

// List handles GET /v1/vehicles. No authentication.
func (h *VehicleHandler) List(c echo.Context) error {
	vehicles, err := h.Vehicles.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, vehicles)
}

// Get handles GET /v1/vehicles/:id.
func (h *VehicleHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	vehicle, err := h.Vehicles.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, vehicle)
}

// ListModels handles GET /v1/vehicles/models.
func (h *VehicleHandler) ListModels(c echo.Context) error {
	models, err := h.Refs.ListModels(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models)
}

// ListColors handles GET /v1/vehicles/colors.
func (h *VehicleHandler) ListColors(c echo.Context) error {
	colors, err := h.Refs.ListColors(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, colors)
}

// Create handles POST /v1/vehicles. Admins and inspectors.
func (h *VehicleHandler) Create(c echo.Context) error {
	var body vehicleRequest
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
	vehicle := &model.Vehicle{StateNumber: body.StateNumber}
	if err := h.resolveRefs(c, &body, vehicle); err != nil {
		return respondError(c, err)
	}
	if err := h.Vehicles.Create(ctx, vehicle); err != nil {
		return respondError(c, err)
	}
	metrics.RecordCreated("vehicle")
	publish(ctx, h.Events, "vehicle", vehicle.ID, queue.ActionCreated, body.User, vehicle.Version)
	return c.JSON(http.StatusCreated, vehicle)
}

// Update handles PUT /v1/vehicles/:id. The plate is immutable; only
// the references can be rewired.
func (h *VehicleHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body vehicleRequest
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
	vehicle := model.Vehicle{ID: id, Version: body.Version}
	if err := h.resolveRefs(c, &body, &vehicle); err != nil {
		return respondError(c, err)
	}
	newVersion, err := h.Vehicles.Update(ctx, vehicle, body.User)
	if err != nil {
		return respondError(c, err)
	}
	publish(ctx, h.Events, "vehicle", id, queue.ActionUpdated, body.User, newVersion)
	return c.JSON(http.StatusOK, echo.Map{"status": "updated", "new_version": newVersion})
}

// Delete handles DELETE /v1/vehicles/:id?user=. Admin only; blocked
// while any protocol references the vehicle or another user holds a
// live lock.
func (h *VehicleHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	user, ok := queryUser(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user is required"})
	}
	ctx := c.Request().Context()
	if err := role.Authorize(ctx, h.Accounts, user, role.Admin); err != nil {
		return respondError(c, err)
	}
	if err := h.Vehicles.Delete(ctx, id, user); err != nil {
		return respondError(c, err)
	}
	publish(ctx, h.Events, "vehicle", id, queue.ActionDeleted, user, 0)
	return c.JSON(http.StatusOK, echo.Map{"status": "deleted"})
}
