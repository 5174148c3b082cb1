// Package track records augmentation runs for later inspection.
//
// Each completed run produces a [Record] describing what was executed
// (pipeline hash, seed, sample count) and how it went (cache hits,
// duration, error). The [Recorder] interface abstracts the storage
// backend: [MongoRecorder] for shared deployments, [NullRecorder] when
// tracking is disabled.
package track

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Record describes one completed augmentation run.
type Record struct {
	// ID uniquely identifies the run.
	ID string `bson:"_id" json:"id"`

	// PipelineHash is the content hash of the pipeline definition.
	PipelineHash string `bson:"pipeline_hash" json:"pipeline_hash"`

	// Seed is the run seed.
	Seed uint64 `bson:"seed" json:"seed"`

	// Samples is the number of samples produced.
	Samples int `bson:"samples" json:"samples"`

	// CacheHits is how many samples were served from the cache.
	CacheHits int `bson:"cache_hits" json:"cache_hits"`

	// Duration is the wall-clock time of the run.
	Duration time.Duration `bson:"duration_ns" json:"duration_ns"`

	// Error holds the failure message for failed runs, empty on success.
	Error string `bson:"error,omitempty" json:"error,omitempty"`

	// CreatedAt is when the run finished.
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// NewRecord builds a Record with a fresh ID and the current timestamp.
func NewRecord(pipelineHash string, seed uint64) Record {
	return Record{
		ID:           uuid.NewString(),
		PipelineHash: pipelineHash,
		Seed:         seed,
		CreatedAt:    time.Now().UTC(),
	}
}

// Recorder persists run records.
type Recorder interface {
	// Save stores one record.
	Save(ctx context.Context, rec Record) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]Record, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// NullRecorder discards all records. It is the default when tracking is
// not configured.
type NullRecorder struct{}

func (NullRecorder) Save(context.Context, Record) error            { return nil }
func (NullRecorder) Recent(context.Context, int) ([]Record, error) { return nil, nil }
func (NullRecorder) Close(context.Context) error                   { return nil }

var _ Recorder = NullRecorder{}
