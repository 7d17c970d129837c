package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ekazakov/violation-registry/internal/lock"
	"github.com/ekazakov/violation-registry/internal/model"
	"github.com/ekazakov/violation-registry/internal/queue"
	"github.com/ekazakov/violation-registry/internal/repository"
)

// fakes_test.go holds in-memory stores that mirror the MySQL
// repositories closely enough to exercise the full lock, version and
// role flow through the handlers. Lock and version decisions go
// through the same internal/lock functions the repositories encode in
// SQL, with a controllable clock instead of UTC_TIMESTAMP().

const testTTL = 45 * time.Second

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// lockRow is the shared soft-lock bookkeeping each fake store embeds
// per record.
type lockRow struct {
	lockedBy *string
	lockedAt *time.Time
}

func (r *lockRow) state() lock.State {
	return lock.State{LockedBy: r.lockedBy, LockedAt: r.lockedAt}
}

func (r *lockRow) set(user string, now time.Time) {
	u, t := user, now
	r.lockedBy, r.lockedAt = &u, &t
}

func (r *lockRow) clear() {
	r.lockedBy, r.lockedAt = nil, nil
}

// lockTable implements LockStore over a set of lockRows keyed by id.
type lockTable struct {
	clock *fakeClock
	rows  map[int64]*lockRow
}

func newLockTable(clock *fakeClock) *lockTable {
	return &lockTable{clock: clock, rows: make(map[int64]*lockRow)}
}

func (t *lockTable) AcquireLock(_ context.Context, id int64, user string) error {
	row, ok := t.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	if err := lock.CanLock(row.state(), user, t.clock.Now(), testTTL); err != nil {
		return err
	}
	row.set(user, t.clock.Now())
	return nil
}

func (t *lockTable) ReleaseLock(_ context.Context, id int64, user string) error {
	row, ok := t.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	if err := lock.CanUnlock(row.state(), user, t.clock.Now(), testTTL); err != nil {
		return err
	}
	row.clear()
	return nil
}

// canEdit applies the lock and version checks an update must pass, and
// clears the lock on success the way the conditional UPDATE does.
func (t *lockTable) canEdit(id int64, user string, current, presented int64) error {
	row := t.rows[id]
	if err := lock.CanEdit(row.state(), user, t.clock.Now(), testTTL); err != nil {
		return err
	}
	if err := lock.CheckVersion(current, presented); err != nil {
		return err
	}
	row.clear()
	return nil
}

type fakeOwnerStore struct {
	*lockTable
	owners map[int64]*model.Owner
	nextID int64
}

func newFakeOwnerStore(clock *fakeClock) *fakeOwnerStore {
	return &fakeOwnerStore{lockTable: newLockTable(clock), owners: make(map[int64]*model.Owner)}
}

func (s *fakeOwnerStore) List(context.Context) ([]model.Owner, error) {
	out := make([]model.Owner, 0, len(s.owners))
	for _, o := range s.owners {
		out = append(out, *o)
	}
	return out, nil
}

func (s *fakeOwnerStore) Get(_ context.Context, id int64) (model.Owner, error) {
	o, ok := s.owners[id]
	if !ok {
		return model.Owner{}, repository.ErrNotFound
	}
	return *o, nil
}

func (s *fakeOwnerStore) FindByName(_ context.Context, last, first string) (model.Owner, error) {
	for _, o := range s.owners {
		if o.LastName == last && o.FirstName == first {
			return *o, nil
		}
	}
	return model.Owner{}, repository.ErrNotFound
}

func (s *fakeOwnerStore) Create(_ context.Context, o *model.Owner) error {
	for _, ex := range s.owners {
		if ex.LastName == o.LastName && ex.FirstName == o.FirstName &&
			ex.MiddleName == o.MiddleName {
			return repository.ErrAlreadyExists
		}
	}
	s.nextID++
	o.ID = s.nextID
	o.Version = 1
	cp := *o
	s.owners[o.ID] = &cp
	s.rows[o.ID] = &lockRow{}
	return nil
}

func (s *fakeOwnerStore) Update(_ context.Context, o model.Owner, user string) (int64, error) {
	cur, ok := s.owners[o.ID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if err := s.canEdit(o.ID, user, cur.Version, o.Version); err != nil {
		return 0, err
	}
	cur.LastName, cur.FirstName, cur.MiddleName = o.LastName, o.FirstName, o.MiddleName
	cur.DateOfBirth, cur.Address = o.DateOfBirth, o.Address
	cur.Version++
	return cur.Version, nil
}

type fakeInspectorStore struct {
	*lockTable
	inspectors map[int64]*model.Inspector
	nextID     int64
}

func newFakeInspectorStore(clock *fakeClock) *fakeInspectorStore {
	return &fakeInspectorStore{lockTable: newLockTable(clock), inspectors: make(map[int64]*model.Inspector)}
}

func (s *fakeInspectorStore) List(context.Context) ([]model.Inspector, error) {
	out := make([]model.Inspector, 0, len(s.inspectors))
	for _, i := range s.inspectors {
		out = append(out, *i)
	}
	return out, nil
}

func (s *fakeInspectorStore) Get(_ context.Context, id int64) (model.Inspector, error) {
	i, ok := s.inspectors[id]
	if !ok {
		return model.Inspector{}, repository.ErrNotFound
	}
	return *i, nil
}

func (s *fakeInspectorStore) FindByName(_ context.Context, last, first string) (model.Inspector, error) {
	for _, i := range s.inspectors {
		if i.LastName == last && i.FirstName == first {
			return *i, nil
		}
	}
	return model.Inspector{}, repository.ErrNotFound
}

func (s *fakeInspectorStore) Create(_ context.Context, i *model.Inspector) error {
	for _, ex := range s.inspectors {
		if ex.LastName == i.LastName && ex.FirstName == i.FirstName && ex.MiddleName == i.MiddleName {
			return repository.ErrAlreadyExists
		}
	}
	s.nextID++
	i.ID = s.nextID
	i.Version = 1
	cp := *i
	s.inspectors[i.ID] = &cp
	s.rows[i.ID] = &lockRow{}
	return nil
}

func (s *fakeInspectorStore) Update(_ context.Context, i model.Inspector, user string) (int64, error) {
	cur, ok := s.inspectors[i.ID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if err := s.canEdit(i.ID, user, cur.Version, i.Version); err != nil {
		return 0, err
	}
	cur.LastName, cur.FirstName, cur.MiddleName = i.LastName, i.FirstName, i.MiddleName
	cur.Department, cur.Rank = i.Department, i.Rank
	cur.Version++
	return cur.Version, nil
}

type fakeVehicleStore struct {
	*lockTable
	vehicles  map[int64]*model.Vehicle
	protocols map[int64]int // vehicle id -> referencing protocol count
	nextID    int64
}

func newFakeVehicleStore(clock *fakeClock) *fakeVehicleStore {
	return &fakeVehicleStore{
		lockTable: newLockTable(clock),
		vehicles:  make(map[int64]*model.Vehicle),
		protocols: make(map[int64]int),
	}
}

func (s *fakeVehicleStore) List(context.Context) ([]model.Vehicle, error) {
	out := make([]model.Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		out = append(out, *v)
	}
	return out, nil
}

func (s *fakeVehicleStore) Get(_ context.Context, id int64) (model.Vehicle, error) {
	v, ok := s.vehicles[id]
	if !ok {
		return model.Vehicle{}, repository.ErrNotFound
	}
	return *v, nil
}

func (s *fakeVehicleStore) FindByStateNumber(_ context.Context, plate string) (model.Vehicle, error) {
	for _, v := range s.vehicles {
		if v.StateNumber == plate {
			return *v, nil
		}
	}
	return model.Vehicle{}, repository.ErrNotFound
}

func (s *fakeVehicleStore) Create(_ context.Context, v *model.Vehicle) error {
	for _, ex := range s.vehicles {
		if ex.StateNumber == v.StateNumber {
			return repository.ErrAlreadyExists
		}
	}
	s.nextID++
	v.ID = s.nextID
	v.Version = 1
	cp := *v
	s.vehicles[v.ID] = &cp
	s.rows[v.ID] = &lockRow{}
	return nil
}

func (s *fakeVehicleStore) Update(_ context.Context, v model.Vehicle, user string) (int64, error) {
	cur, ok := s.vehicles[v.ID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if err := s.canEdit(v.ID, user, cur.Version, v.Version); err != nil {
		return 0, err
	}
	cur.ModelID, cur.ColorID, cur.OwnerID = v.ModelID, v.ColorID, v.OwnerID
	cur.Version++
	return cur.Version, nil
}

func (s *fakeVehicleStore) Delete(_ context.Context, id int64, user string) error {
	row, ok := s.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	if s.protocols[id] > 0 {
		return repository.ErrInUse
	}
	if err := lock.CanEdit(row.state(), user, s.clock.Now(), testTTL); err != nil {
		return err
	}
	delete(s.vehicles, id)
	delete(s.rows, id)
	return nil
}

type fakeViolationStore struct {
	*lockTable
	violations map[int64]*model.Violation
	refs       *fakeReferenceStore
	nextID     int64
}

func newFakeViolationStore(clock *fakeClock, refs *fakeReferenceStore) *fakeViolationStore {
	return &fakeViolationStore{
		lockTable:  newLockTable(clock),
		violations: make(map[int64]*model.Violation),
		refs:       refs,
	}
}

func (s *fakeViolationStore) List(_ context.Context, typeName string) ([]model.Violation, error) {
	var typeID int64 = -1
	if typeName != "" {
		for _, t := range s.refs.types {
			if t.Name == typeName {
				typeID = t.ID
			}
		}
	}
	out := make([]model.Violation, 0, len(s.violations))
	for _, v := range s.violations {
		if typeName != "" && v.ViolationTypeID != typeID {
			continue
		}
		out = append(out, *v)
	}
	return out, nil
}

func (s *fakeViolationStore) Get(_ context.Context, id int64) (model.Violation, error) {
	v, ok := s.violations[id]
	if !ok {
		return model.Violation{}, repository.ErrNotFound
	}
	return *v, nil
}

func (s *fakeViolationStore) FindByName(_ context.Context, name string) (model.Violation, error) {
	for _, v := range s.violations {
		if v.Name == name {
			return *v, nil
		}
	}
	return model.Violation{}, repository.ErrNotFound
}

func (s *fakeViolationStore) Create(_ context.Context, v *model.Violation) error {
	for _, ex := range s.violations {
		if ex.Name == v.Name {
			return repository.ErrAlreadyExists
		}
	}
	s.nextID++
	v.ID = s.nextID
	v.Version = 1
	cp := *v
	s.violations[v.ID] = &cp
	s.rows[v.ID] = &lockRow{}
	return nil
}

func (s *fakeViolationStore) Update(_ context.Context, v model.Violation, user string) (int64, error) {
	cur, ok := s.violations[v.ID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if err := s.canEdit(v.ID, user, cur.Version, v.Version); err != nil {
		return 0, err
	}
	cur.Name = v.Name
	cur.ViolationTypeID, cur.ArticleID = v.ViolationTypeID, v.ArticleID
	cur.Version++
	return cur.Version, nil
}

type fakeProtocolStore struct {
	*lockTable
	protocols map[int64]*model.Protocol
	nextID    int64
}

func newFakeProtocolStore(clock *fakeClock) *fakeProtocolStore {
	return &fakeProtocolStore{lockTable: newLockTable(clock), protocols: make(map[int64]*model.Protocol)}
}

func (s *fakeProtocolStore) List(context.Context) ([]model.Protocol, error) {
	out := make([]model.Protocol, 0, len(s.protocols))
	for _, p := range s.protocols {
		out = append(out, *p)
	}
	return out, nil
}

func (s *fakeProtocolStore) Get(_ context.Context, id int64) (model.Protocol, error) {
	p, ok := s.protocols[id]
	if !ok {
		return model.Protocol{}, repository.ErrNotFound
	}
	return *p, nil
}

func (s *fakeProtocolStore) Create(_ context.Context, p *model.Protocol) error {
	for _, ex := range s.protocols {
		if ex.Number == p.Number {
			return repository.ErrAlreadyExists
		}
	}
	s.nextID++
	p.ID = s.nextID
	p.Version = 1
	cp := *p
	s.protocols[p.ID] = &cp
	s.rows[p.ID] = &lockRow{}
	return nil
}

func (s *fakeProtocolStore) Update(_ context.Context, p model.Protocol, user string) (int64, error) {
	cur, ok := s.protocols[p.ID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if err := s.canEdit(p.ID, user, cur.Version, p.Version); err != nil {
		return 0, err
	}
	cur.IssueDate, cur.IssueTime = p.IssueDate, p.IssueTime
	cur.VehicleID, cur.OwnerID, cur.InspectorID, cur.ViolationID =
		p.VehicleID, p.OwnerID, p.InspectorID, p.ViolationID
	cur.Version++
	return cur.Version, nil
}

type fakeReferenceStore struct {
	models   []model.CarModel
	colors   []model.Color
	types    []model.ViolationType
	articles []model.Article
	nextID   int64
}

func newFakeReferenceStore() *fakeReferenceStore {
	return &fakeReferenceStore{}
}

func (s *fakeReferenceStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *fakeReferenceStore) addModel(name, brand string) {
	s.models = append(s.models, model.CarModel{ID: s.id(), Name: name, Brand: brand})
}

func (s *fakeReferenceStore) addColor(name string) {
	s.colors = append(s.colors, model.Color{ID: s.id(), Name: name})
}

func (s *fakeReferenceStore) ListModels(context.Context) ([]model.CarModel, error) {
	return s.models, nil
}

func (s *fakeReferenceStore) ListColors(context.Context) ([]model.Color, error) {
	return s.colors, nil
}

func (s *fakeReferenceStore) ListTypes(context.Context) ([]model.ViolationType, error) {
	return s.types, nil
}

func (s *fakeReferenceStore) ListArticles(context.Context) ([]model.Article, error) {
	return s.articles, nil
}

func (s *fakeReferenceStore) FindModel(_ context.Context, name, brand string) (model.CarModel, error) {
	for _, m := range s.models {
		if m.Name == name && m.Brand == brand {
			return m, nil
		}
	}
	return model.CarModel{}, repository.ErrNotFound
}

func (s *fakeReferenceStore) FindColor(_ context.Context, name string) (model.Color, error) {
	for _, c := range s.colors {
		if c.Name == name {
			return c, nil
		}
	}
	return model.Color{}, repository.ErrNotFound
}

func (s *fakeReferenceStore) EnsureType(_ context.Context, name string) (int64, error) {
	for _, t := range s.types {
		if t.Name == name {
			return t.ID, nil
		}
	}
	t := model.ViolationType{ID: s.id(), Name: name}
	s.types = append(s.types, t)
	return t.ID, nil
}

func (s *fakeReferenceStore) EnsureArticle(_ context.Context, number, name string) (int64, error) {
	for _, a := range s.articles {
		if a.Number == number {
			return a.ID, nil
		}
	}
	a := model.Article{ID: s.id(), Number: number, Name: name}
	s.articles = append(s.articles, a)
	return a.ID, nil
}

// fakeAccounts maps usernames to accounts for role checks.
type fakeAccounts map[string]model.Account

func (f fakeAccounts) FindByUsername(_ context.Context, username string) (model.Account, error) {
	a, ok := f[username]
	if !ok {
		return model.Account{}, repository.ErrNotFound
	}
	return a, nil
}

func testAccounts() fakeAccounts {
	return fakeAccounts{
		"admin": {ID: 1, Username: "admin", Role: "admin"},
		"alice": {ID: 2, Username: "alice", Role: "inspector"},
		"bob":   {ID: 3, Username: "bob", Role: "inspector"},
	}
}

// fakePublisher records events instead of talking to RabbitMQ.
type fakePublisher struct {
	events []queue.RecordChangedEvent
}

func (p *fakePublisher) PublishRecordChanged(_ context.Context, ev queue.RecordChangedEvent) error {
	p.events = append(p.events, ev)
	return nil
}

// newTestContext builds an echo context around a JSON request body.
func newTestContext(method, target string, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody(rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return out
}
