// Package handler implements the HTTP endpoints of the registry. Each
// entity gets its own handler type bundling the stores it needs; the
// shared pieces here translate the sentinel error taxonomy into the
// HTTP status vocabulary and hold small request helpers.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ekazakov/violation-registry/internal/lock"
	"github.com/ekazakov/violation-registry/internal/metrics"
	"github.com/ekazakov/violation-registry/internal/queue"
	"github.com/ekazakov/violation-registry/internal/repository"
	"github.com/ekazakov/violation-registry/internal/role"
)

// respondError maps a sentinel error onto the HTTP status vocabulary:
// 400 bad reference, 403 forbidden (role or lock ownership), 404 not
// found, 409 conflict (lock, version or duplicate). Anything
// unrecognized is a 500.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, role.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, role.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, lock.ErrNotLockOwner):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, lock.ErrLockConflict):
		metrics.LockConflict()
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, lock.ErrVersionConflict):
		metrics.VersionConflict()
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrAlreadyExists), errors.Is(err, repository.ErrInUse):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrInvalidReference), errors.Is(err, repository.ErrUnknownEntity):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// queryUser extracts the required ?user= parameter used by lock, unlock
// and delete routes.
func queryUser(c echo.Context) (string, bool) {
	user := c.QueryParam("user")
	return user, user != ""
}

// validDate reports whether s is a YYYY-MM-DD date.
func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// normalizeTime accepts HH:MM or HH:MM:SS and returns the HH:MM:SS
// form stored in the TIME column.
func normalizeTime(s string) (string, bool) {
	if t, err := time.Parse("15:04:05", s); err == nil {
		return t.Format("15:04:05"), true
	}
	if t, err := time.Parse("15:04", s); err == nil {
		return t.Format("15:04:05"), true
	}
	return "", false
}

// publish sends a record-change event when a publisher is wired.
// Delivery failures are the publisher's to log; requests never fail on
// them.
func publish(ctx context.Context, p EventPublisher, entity string, id int64, action, user string, version int64) {
	if p == nil {
		return
	}
	_ = p.PublishRecordChanged(ctx, queue.RecordChangedEvent{
		Entity:     entity,
		ID:         id,
		Action:     action,
		User:       user,
		Version:    version,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
}
