package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekazakov/violation-registry/internal/model"
)

func lockRequest(h *LockHandler, verb func(echo.Context) error, entity string, id int64, user string) (int, map[string]any) {
	target := fmt.Sprintf("/v1/lock/%s/%d", entity, id)
	if user != "" {
		target += "?user=" + user
	}
	c, rec := newTestContext(http.MethodPost, target, "")
	c.SetParamNames("entity", "id")
	c.SetParamValues(entity, fmt.Sprint(id))
	if err := verb(c); err != nil {
		return 0, nil
	}
	return rec.Code, decodeBody(rec)
}

func newLockFixture(clock *fakeClock) (*LockHandler, *fakeOwnerStore) {
	owners := newFakeOwnerStore(clock)
	_ = owners.Create(context.Background(), &model.Owner{
		LastName: "Ivanov", FirstName: "Petr", DateOfBirth: "1985-03-14", Address: "Moscow",
	})
	h := NewLockHandler(map[Kind]LockStore{KindOwner: owners})
	return h, owners
}

func TestLockAcquireAndRelease(t *testing.T) {
	h, owners := newLockFixture(newFakeClock())

	code, body := lockRequest(h, h.Lock, "owner", 1, "alice")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "locked", body["status"])
	assert.True(t, owners.rows[1].state().HeldBy("alice"))

	// Re-locking your own record is idempotent.
	code, _ = lockRequest(h, h.Lock, "owner", 1, "alice")
	assert.Equal(t, http.StatusOK, code)

	code, body = lockRequest(h, h.Unlock, "owner", 1, "alice")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "unlocked", body["status"])
	assert.False(t, owners.rows[1].state().Held())
}

func TestLockConflictAndExpiry(t *testing.T) {
	clock := newFakeClock()
	h, _ := newLockFixture(clock)

	code, _ := lockRequest(h, h.Lock, "owner", 1, "alice")
	require.Equal(t, http.StatusOK, code)

	code, _ = lockRequest(h, h.Lock, "owner", 1, "bob")
	assert.Equal(t, http.StatusConflict, code)

	code, _ = lockRequest(h, h.Unlock, "owner", 1, "bob")
	assert.Equal(t, http.StatusForbidden, code)

	// After the hold window passes, the abandoned lock is up for grabs.
	clock.Advance(testTTL + time.Second)
	code, _ = lockRequest(h, h.Lock, "owner", 1, "bob")
	assert.Equal(t, http.StatusOK, code)
}

func TestLockUnknownEntity(t *testing.T) {
	h, _ := newLockFixture(newFakeClock())

	code, _ := lockRequest(h, h.Lock, "spaceship", 1, "alice")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestLockMissingRecord(t *testing.T) {
	h, _ := newLockFixture(newFakeClock())

	code, _ := lockRequest(h, h.Lock, "owner", 42, "alice")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = lockRequest(h, h.Unlock, "owner", 42, "alice")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestLockMissingUser(t *testing.T) {
	h, _ := newLockFixture(newFakeClock())

	code, _ := lockRequest(h, h.Lock, "owner", 1, "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestLockPluralAlias(t *testing.T) {
	h, owners := newLockFixture(newFakeClock())

	code, _ := lockRequest(h, h.Lock, "owners", 1, "alice")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, owners.rows[1].state().HeldBy("alice"))
}

func TestLockPerEntityRoute(t *testing.T) {
	h, owners := newLockFixture(newFakeClock())

	c, rec := newTestContext(http.MethodPost, "/v1/owners/lock/1?user=alice", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.LockFor(KindOwner)(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, owners.rows[1].state().HeldBy("alice"))

	c, rec = newTestContext(http.MethodPost, "/v1/owners/unlock/1?user=alice", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.UnlockFor(KindOwner)(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, owners.rows[1].state().Held())
}
