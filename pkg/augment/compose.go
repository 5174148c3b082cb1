package augment

// Compose combines any number of transforms into one, simplifying the
// result so pipelines stay minimal:
//
//   - No operands yields [Identity]; one operand is returned unchanged.
//   - [Identity] operands are eliminated on either side; composing two
//     identities yields a single Identity, never a Sequence of two.
//   - A left [Sequence] absorbs the right operand instead of nesting, so
//     the result is always flat. Two sequences merge into one.
//   - A transform implementing [Composer] may fuse with its right-hand
//     neighbor; fusion is tried before sequencing, including against the
//     tail of an already-built sequence, so it applies transitively when
//     many operands fold together.
//
// Operands fold left to right: Compose(a, b, c) is
// Compose(Compose(a, b), c). Compose never mutates its operands.
func Compose(transforms ...Transform) Transform {
	if len(transforms) == 0 {
		return Identity{}
	}
	out := transforms[0]
	for _, t := range transforms[1:] {
		out = compose2(out, t)
	}
	return out
}

// Then composes the receiver-style pair "a, then b". It is a two-argument
// alias for [Compose] with no independent semantics.
func Then(a, b Transform) Transform {
	return Compose(a, b)
}

// compose2 applies the pairwise composition rules, most specific first.
func compose2(a, b Transform) Transform {
	if isIdentity(a) {
		return b
	}
	if isIdentity(b) {
		return a
	}

	seq, aIsSeq := a.(*Sequence)
	if !aIsSeq {
		if fused, ok := fuse(a, b); ok {
			return fused
		}
		return NewSequence(append([]Transform{a}, children(b)...)...)
	}

	// Try fusing the sequence tail with b; the fused result may simplify
	// further (down to Identity), so recompose the prefix around it.
	kids := seq.transforms
	if len(kids) > 0 {
		if fused, ok := fuse(kids[len(kids)-1], b); ok {
			prefix := make([]Transform, 0, len(kids))
			prefix = append(prefix, kids[:len(kids)-1]...)
			return Compose(append(prefix, fused)...)
		}
	}

	merged := make([]Transform, 0, len(kids)+1)
	merged = append(merged, kids...)
	merged = append(merged, children(b)...)
	return NewSequence(merged...)
}

// fuse consults a's Composer rule for b, if a has one.
func fuse(a, b Transform) (Transform, bool) {
	if c, ok := a.(Composer); ok {
		return c.ComposeWith(b)
	}
	return nil, false
}

// children returns t's child list if t is a Sequence, else t itself as a
// singleton. Used to flatten sequences on either side of a composition.
func children(t Transform) []Transform {
	if s, ok := t.(*Sequence); ok {
		return s.transforms
	}
	return []Transform{t}
}
