package track

import (
	"context"
	"testing"
	"time"
)

func TestNewRecord(t *testing.T) {
	before := time.Now().UTC()
	rec := NewRecord("abc123", 42)

	if rec.ID == "" {
		t.Error("NewRecord() did not assign an ID")
	}
	if rec.PipelineHash != "abc123" || rec.Seed != 42 {
		t.Errorf("got hash=%q seed=%d, want abc123 and 42", rec.PipelineHash, rec.Seed)
	}
	if rec.CreatedAt.Before(before) {
		t.Errorf("CreatedAt %v predates record creation", rec.CreatedAt)
	}

	other := NewRecord("abc123", 42)
	if other.ID == rec.ID {
		t.Error("two records share an ID")
	}
}

func TestNullRecorder(t *testing.T) {
	ctx := context.Background()
	var r Recorder = NullRecorder{}

	if err := r.Save(ctx, NewRecord("h", 1)); err != nil {
		t.Errorf("Save() failed: %v", err)
	}
	recs, err := r.Recent(ctx, 10)
	if err != nil {
		t.Errorf("Recent() failed: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("NullRecorder returned %d records, want 0", len(recs))
	}
	if err := r.Close(ctx); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
}
