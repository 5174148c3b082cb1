package augment_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/morphkit/morph/pkg/augment"
)

func TestSequenceRandStateShape(t *testing.T) {
	seq := augment.NewSequence(addN{n: 1}, randAdd{}, augment.Identity{})

	state := seq.RandState(testRNG())
	states, ok := state.([]augment.State)
	if !ok {
		t.Fatalf("sequence state is %T, want []State", state)
	}
	if len(states) != seq.Len() {
		t.Fatalf("state length = %d, want %d", len(states), seq.Len())
	}
	if states[0] != augment.NoState {
		t.Error("deterministic child should get NoState")
	}
	if states[2] != augment.NoState {
		t.Error("Identity child should get NoState")
	}
}

func TestSequenceAppliesInOrder(t *testing.T) {
	// (0 + 1) then (*captured via tag ordering*) + 10 = 11; order matters
	// because addN is not commutative with the payload check below.
	seq := augment.NewSequence(addN{n: 1}, addN{n: 10})

	out, err := augment.Apply(testRNG(), seq, payloadItem{payload: 0, tag: "x"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Data() != 11 {
		t.Errorf("payload = %v, want 11", out.Data())
	}
	if out.(payloadItem).tag != "x" {
		t.Error("metadata lost during sequence application")
	}
}

func TestSequenceStateArityMismatch(t *testing.T) {
	seq := augment.NewSequence(addN{n: 1}, addN{n: 2}, addN{n: 3})

	// Two states for three children must fail, not silently skip a child.
	short := []augment.State{augment.NoState, augment.NoState}
	_, err := seq.Apply(short, payloadItem{payload: 0})
	if !errors.Is(err, augment.ErrStateArity) {
		t.Fatalf("error = %v, want ErrStateArity", err)
	}

	_, err = seq.ApplyTuple(short, []augment.Item{payloadItem{}})
	if !errors.Is(err, augment.ErrStateArity) {
		t.Fatalf("tuple error = %v, want ErrStateArity", err)
	}
}

func TestSequenceStateTypeMismatch(t *testing.T) {
	seq := augment.NewSequence(addN{n: 1})

	_, err := seq.Apply("not a state list", payloadItem{})
	if !errors.Is(err, augment.ErrStateType) {
		t.Fatalf("error = %v, want ErrStateType", err)
	}
}

func TestSequenceErrorNamesStep(t *testing.T) {
	seq := augment.NewSequence(addN{n: 1}, failing{}, addN{n: 2})

	_, err := augment.Apply(testRNG(), seq, payloadItem{})
	if err == nil {
		t.Fatal("expected error from failing child")
	}
	if !errors.Is(err, errBoom) {
		t.Fatalf("error chain lost the cause: %v", err)
	}
	if !strings.Contains(err.Error(), "step 1") {
		t.Errorf("error %q does not name the failing position", err)
	}
}

func TestSequenceDeterministicForFixedState(t *testing.T) {
	seq := augment.NewSequence(randAdd{}, addN{n: 5}, randAdd{})
	state := seq.RandState(testRNG())
	in := payloadItem{payload: 100}

	a, err := seq.Apply(state, in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	b, err := seq.Apply(state, in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if a.Data() != b.Data() {
		t.Errorf("fixed state produced %v then %v", a.Data(), b.Data())
	}
}

func TestSequenceTupleSharedState(t *testing.T) {
	// Every step of the sequence must broadcast one state across the
	// whole tuple, keeping both items identical here.
	seq := augment.NewSequence(randAdd{}, randAdd{})
	out, err := augment.ApplyAll(testRNG(), seq, payloadItem{payload: 0}, payloadItem{payload: 0})
	if err != nil {
		t.Fatalf("ApplyAll: %v", err)
	}
	if out[0].Data() != out[1].Data() {
		t.Errorf("tuple elements diverged: %v vs %v", out[0].Data(), out[1].Data())
	}
}

func TestSequenceTransformsIsCopy(t *testing.T) {
	seq := augment.NewSequence(addN{n: 1}, addN{n: 2})
	ts := seq.Transforms()
	ts[0] = failing{}

	if _, err := augment.Apply(testRNG(), seq, payloadItem{}); err != nil {
		t.Errorf("mutating the returned slice must not affect the sequence: %v", err)
	}
}
