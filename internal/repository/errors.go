// Package repository provides MySQL data access for the registry
// entities. This file defines the sentinel errors shared by all
// repositories so that handlers can translate failure modes into HTTP
// status codes without inspecting driver errors. Lock and version
// conflicts use the sentinels from the internal/lock package.
package repository

import "errors"

// ErrNotFound is returned when an entity id or a natural-key reference
// does not resolve to a row. Handlers translate it into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned when an insert violates a uniqueness
// invariant (duplicate plate, protocol number, full name and so on).
// Handlers translate it into HTTP 409.
var ErrAlreadyExists = errors.New("already exists")

// ErrInvalidReference is returned when one or more natural-key
// references in a write request fail to resolve. The whole write is
// rejected; no partial mutation occurs. Handlers translate it into
// HTTP 400.
var ErrInvalidReference = errors.New("invalid reference")

// ErrInUse is returned when a delete is blocked by dependent rows,
// such as removing a vehicle that protocols still reference. Handlers
// translate it into HTTP 409.
var ErrInUse = errors.New("in use by dependent records")

// ErrUnknownEntity is returned by the generic lock dispatch when the
// entity kind in the URL is not one of the lockable kinds. Handlers
// translate it into HTTP 400.
var ErrUnknownEntity = errors.New("unknown entity type")
