// Package docstore is the path-addressed document store the synchronization
// core is built on. Documents are JSON values guarded by a revision counter;
// writes are conditional on the revision the writer last read.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// AnyRevision makes Write unconditional.
const AnyRevision uint64 = math.MaxUint64

var (
	ErrConflict = errors.New("revision conflict")
	ErrClosed   = errors.New("store closed")
	ErrNilValue = errors.New("document value is nil")
)

// ConflictError is returned when a conditional write lost the race.
type ConflictError struct {
	Path       string
	IfRevision uint64
	Revision   uint64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("revision conflict on %s: expected %d, current %d", e.Path, e.IfRevision, e.Revision)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Document is a snapshot of one path. Value is nil and Revision is 0 when the
// path holds nothing.
type Document struct {
	Path     string
	Value    json.RawMessage
	Revision uint64
}

func (d Document) Exists() bool {
	return d.Revision > 0
}

type Store interface {
	Read(ctx context.Context, path string) (Document, error)
	// Write stores value at path if the current revision equals ifRevision
	// (0 means the path must be empty) and returns the new revision.
	Write(ctx context.Context, path string, value json.RawMessage, ifRevision uint64) (uint64, error)
	// Observe delivers the current document first and then every later
	// change until the subscription or ctx is closed.
	Observe(ctx context.Context, path string) (Subscription, error)
	Ping(ctx context.Context) error
	Close() error
}

type Subscription interface {
	Updates() <-chan Document
	Close() error
}

// Join builds a store path from its segments.
func Join(segments ...string) string {
	return "/" + strings.Join(segments, "/")
}

// CheckRevision returns a ConflictError unless a write conditioned on
// ifRevision may replace a document currently at current.
func CheckRevision(path string, current, ifRevision uint64) error {
	if ifRevision == AnyRevision || ifRevision == current {
		return nil
	}
	return &ConflictError{Path: path, IfRevision: ifRevision, Revision: current}
}
