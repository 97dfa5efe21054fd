package ports

import (
	"context"
	"io"
)

// Append is one record to add to a collection.
type Append struct {
	Collection string
	Key        string
	Data       []byte
}

// StoredRecord is an appended record with its global sequence number.
type StoredRecord struct {
	Seq        int64
	Collection string
	Key        string
	Data       []byte
}

// Tombstone is the payload that deletes a key in a versioned collection.
var Tombstone = []byte("null")

// RecordLog is the append-only store behind every collection.
//
// Sequence numbers are global across collections and strictly increasing.
// Append stores all entries or none of them. List returns records of one
// collection in ascending sequence order; an empty key lists every key and
// asOf <= 0 lists up to the current head.
type RecordLog interface {
	Append(ctx context.Context, entries ...Append) ([]int64, error)
	List(ctx context.Context, collection, key string, asOf int64) ([]StoredRecord, error)
	Head(ctx context.Context) (int64, error)
	Close() error
}

// ArtifactStore holds rendered evidence pack files.
type ArtifactStore interface {
	// Stage opens a private staging area for a pack. Nothing is visible
	// under the pack id until Commit succeeds.
	Stage(ctx context.Context, packID string) (ArtifactStaging, error)
	// Open reads one committed file. Returns domain.ErrArtifactNotFound.
	Open(ctx context.Context, packID, name string) (io.ReadCloser, error)
	// Remove deletes a committed pack. Used when metadata cannot be recorded.
	Remove(ctx context.Context, packID string) error
}

type ArtifactStaging interface {
	Write(name string, data []byte) error
	// Commit publishes every staged file at once and returns the pack location.
	Commit() (string, error)
	Discard() error
}

// TextCompleter turns a prompt into generated text.
type TextCompleter interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}
