package observability

import (
	"context"
	"testing"
	"time"
)

type countingApplyHooks struct {
	runs, samples int
}

func (h *countingApplyHooks) OnRunStart(context.Context, string, int) { h.runs++ }
func (h *countingApplyHooks) OnRunComplete(context.Context, string, int, time.Duration, error) {
}
func (h *countingApplyHooks) OnSampleComplete(context.Context, string, int, bool, time.Duration, error) {
	h.samples++
}

func TestHookRegistration(t *testing.T) {
	defer Reset()

	h := &countingApplyHooks{}
	SetApplyHooks(h)

	ctx := context.Background()
	Apply().OnRunStart(ctx, "hash", 3)
	Apply().OnSampleComplete(ctx, "hash", 0, false, 0, nil)
	Apply().OnSampleComplete(ctx, "hash", 1, true, 0, nil)

	if h.runs != 1 || h.samples != 2 {
		t.Errorf("runs=%d samples=%d, want 1 and 2", h.runs, h.samples)
	}
}

func TestNilRegistrationKeepsCurrent(t *testing.T) {
	defer Reset()

	h := &countingApplyHooks{}
	SetApplyHooks(h)
	SetApplyHooks(nil)

	Apply().OnRunStart(context.Background(), "hash", 1)
	if h.runs != 1 {
		t.Error("nil registration must not replace the current hooks")
	}
}

func TestResetRestoresNoops(t *testing.T) {
	SetApplyHooks(&countingApplyHooks{})
	SetCacheHooks(NoopCacheHooks{})
	Reset()

	if _, ok := Apply().(NoopApplyHooks); !ok {
		t.Error("Reset did not restore no-op apply hooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Reset did not restore no-op cache hooks")
	}
}
