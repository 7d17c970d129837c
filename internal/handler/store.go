package handler

// store.go declares the storage interfaces the handlers consume. The
// MySQL repositories in internal/repository satisfy them in production;
// the tests substitute in-memory implementations so the full
// lock/version/role flow can be exercised without a database.

import (
	"context"

	"github.com/ekazakov/violation-registry/internal/model"
	"github.com/ekazakov/violation-registry/internal/queue"
	"github.com/ekazakov/violation-registry/internal/repository"
)

// OwnerStore is the owner persistence used by OwnerHandler and by
// reference resolution in vehicle/protocol writes.
type OwnerStore interface {
	List(ctx context.Context) ([]model.Owner, error)
	Get(ctx context.Context, id int64) (model.Owner, error)
	FindByName(ctx context.Context, last, first string) (model.Owner, error)
	Create(ctx context.Context, o *model.Owner) error
	Update(ctx context.Context, o model.Owner, user string) (int64, error)
}

// InspectorStore is the inspector persistence used by InspectorHandler
// and by protocol reference resolution.
type InspectorStore interface {
	List(ctx context.Context) ([]model.Inspector, error)
	Get(ctx context.Context, id int64) (model.Inspector, error)
	FindByName(ctx context.Context, last, first string) (model.Inspector, error)
	Create(ctx context.Context, i *model.Inspector) error
	Update(ctx context.Context, i model.Inspector, user string) (int64, error)
}

// VehicleStore is the vehicle persistence. Delete enforces the
// referential guard against protocols.
type VehicleStore interface {
	List(ctx context.Context) ([]model.Vehicle, error)
	Get(ctx context.Context, id int64) (model.Vehicle, error)
	FindByStateNumber(ctx context.Context, plate string) (model.Vehicle, error)
	Create(ctx context.Context, v *model.Vehicle) error
	Update(ctx context.Context, v model.Vehicle, user string) (int64, error)
	Delete(ctx context.Context, id int64, user string) error
}

// ViolationStore is the violation persistence.
type ViolationStore interface {
	List(ctx context.Context, typeName string) ([]model.Violation, error)
	Get(ctx context.Context, id int64) (model.Violation, error)
	FindByName(ctx context.Context, name string) (model.Violation, error)
	Create(ctx context.Context, v *model.Violation) error
	Update(ctx context.Context, v model.Violation, user string) (int64, error)
}

// ProtocolStore is the protocol persistence.
type ProtocolStore interface {
	List(ctx context.Context) ([]model.Protocol, error)
	Get(ctx context.Context, id int64) (model.Protocol, error)
	Create(ctx context.Context, p *model.Protocol) error
	Update(ctx context.Context, p model.Protocol, user string) (int64, error)
}

// ReferenceStore resolves and lists the reference tables. EnsureType
// and EnsureArticle create missing rows on demand when violations are
// written.
type ReferenceStore interface {
	ListModels(ctx context.Context) ([]model.CarModel, error)
	ListColors(ctx context.Context) ([]model.Color, error)
	ListTypes(ctx context.Context) ([]model.ViolationType, error)
	ListArticles(ctx context.Context) ([]model.Article, error)
	FindModel(ctx context.Context, name, brand string) (model.CarModel, error)
	FindColor(ctx context.Context, name string) (model.Color, error)
	EnsureType(ctx context.Context, name string) (int64, error)
	EnsureArticle(ctx context.Context, number, name string) (int64, error)
}

// LockStore is the per-entity soft-lock surface the generic lock
// endpoint dispatches to. Every lockable repository implements it.
type LockStore interface {
	AcquireLock(ctx context.Context, id int64, user string) error
	ReleaseLock(ctx context.Context, id int64, user string) error
}

// ReportStore serves the denormalized read-only exports.
type ReportStore interface {
	Inspectors(ctx context.Context) ([]repository.InspectorReportRow, error)
	Owners(ctx context.Context) ([]repository.OwnerReport, error)
	Violations(ctx context.Context) ([]repository.ViolationReportRow, error)
}

// EventPublisher delivers record-change events to the message broker.
// Publish failures must never fail the request; handlers ignore the
// returned error after the publisher has logged it.
type EventPublisher interface {
	PublishRecordChanged(ctx context.Context, ev queue.RecordChangedEvent) error
}
