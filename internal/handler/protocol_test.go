package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekazakov/violation-registry/internal/model"
)

type protocolFixture struct {
	handler   *ProtocolHandler
	protocols *fakeProtocolStore
}

// newProtocolFixture seeds one vehicle, owner, inspector and violation
// so protocol requests can resolve all four references.
func newProtocolFixture(clock *fakeClock) *protocolFixture {
	ctx := context.Background()
	owners := newFakeOwnerStore(clock)
	inspectors := newFakeInspectorStore(clock)
	vehicles := newFakeVehicleStore(clock)
	refs := newFakeReferenceStore()
	violations := newFakeViolationStore(clock, refs)
	protocols := newFakeProtocolStore(clock)

	_ = owners.Create(ctx, &model.Owner{LastName: "Ivanov", FirstName: "Petr", DateOfBirth: "1985-03-14", Address: "Moscow"})
	_ = inspectors.Create(ctx, &model.Inspector{LastName: "Sidorov", FirstName: "Oleg", Department: "GIBDD-1", Rank: "captain"})
	_ = vehicles.Create(ctx, &model.Vehicle{StateNumber: "A123BC", ModelID: 1, ColorID: 2, OwnerID: 1})
	_ = violations.Create(ctx, &model.Violation{Name: "Speeding", ViolationTypeID: 1, ArticleID: 2})

	h := NewProtocolHandler(protocols, vehicles, owners, inspectors, violations, testAccounts(), &fakePublisher{})
	return &protocolFixture{handler: h, protocols: protocols}
}

const protocolBody = `{"number":"PR-2024-001","issue_date":"2024-05-10","issue_time":"14:30",
	"vehicle_state_number":"A123BC","owner_last_name":"Ivanov","owner_first_name":"Petr",
	"inspector_last_name":"Sidorov","inspector_first_name":"Oleg",
	"violation_name":"Speeding","user":"alice"}`

func TestProtocolCreate(t *testing.T) {
	f := newProtocolFixture(newFakeClock())

	c, rec := newTestContext(http.MethodPost, "/v1/protocols", protocolBody)
	require.NoError(t, f.handler.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	stored := f.protocols.protocols[1]
	require.NotNil(t, stored)
	assert.Equal(t, "PR-2024-001", stored.Number)
	assert.Equal(t, "14:30:00", stored.IssueTime, "short times are normalized to HH:MM:SS")
	assert.Equal(t, int64(1), stored.VehicleID)
	assert.Equal(t, int64(1), stored.OwnerID)
	assert.Equal(t, int64(1), stored.InspectorID)
	assert.Equal(t, int64(1), stored.ViolationID)
	assert.Equal(t, int64(1), stored.Version)
}

func TestProtocolCreateUnknownReference(t *testing.T) {
	f := newProtocolFixture(newFakeClock())

	body := `{"number":"PR-2024-002","issue_date":"2024-05-10","issue_time":"14:30",
	"vehicle_state_number":"X999XX","owner_last_name":"Ivanov","owner_first_name":"Petr",
	"inspector_last_name":"Sidorov","inspector_first_name":"Oleg",
	"violation_name":"Speeding","user":"alice"}`

	c, rec := newTestContext(http.MethodPost, "/v1/protocols", body)
	require.NoError(t, f.handler.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.protocols.protocols)
}

func TestProtocolDuplicateNumber(t *testing.T) {
	f := newProtocolFixture(newFakeClock())

	c, rec := newTestContext(http.MethodPost, "/v1/protocols", protocolBody)
	require.NoError(t, f.handler.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = newTestContext(http.MethodPost, "/v1/protocols", protocolBody)
	require.NoError(t, f.handler.Create(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestProtocolUpdateKeepsNumber(t *testing.T) {
	f := newProtocolFixture(newFakeClock())

	c, rec := newTestContext(http.MethodPost, "/v1/protocols", protocolBody)
	require.NoError(t, f.handler.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	id := int64(decodeBody(rec)["id"].(float64))

	c, rec = newTestContext(http.MethodPut, "/v1/protocols/1",
		`{"issue_date":"2024-05-11","issue_time":"09:15:30",
		"vehicle_state_number":"A123BC","owner_last_name":"Ivanov","owner_first_name":"Petr",
		"inspector_last_name":"Sidorov","inspector_first_name":"Oleg",
		"violation_name":"Speeding","user":"alice","version":1}`)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(id))
	require.NoError(t, f.handler.Update(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored := f.protocols.protocols[id]
	assert.Equal(t, "PR-2024-001", stored.Number)
	assert.Equal(t, "2024-05-11", stored.IssueDate)
	assert.Equal(t, "09:15:30", stored.IssueTime)
	assert.Equal(t, int64(2), stored.Version)
}

func TestProtocolCreateBadTime(t *testing.T) {
	f := newProtocolFixture(newFakeClock())

	body := `{"number":"PR-2024-003","issue_date":"2024-05-10","issue_time":"2:75",
	"vehicle_state_number":"A123BC","owner_last_name":"Ivanov","owner_first_name":"Petr",
	"inspector_last_name":"Sidorov","inspector_first_name":"Oleg",
	"violation_name":"Speeding","user":"alice"}`

	c, rec := newTestContext(http.MethodPost, "/v1/protocols", body)
	require.NoError(t, f.handler.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
