package inference

import "iter"

// Results is a lazy sequence of inferred values. A failure is reported as a
// final (nil, err) pair; consumers may stop early at any point.
type Results = iter.Seq2[Value, error]

func Single(v Value) Results {
	return func(yield func(Value, error) bool) {
		yield(v, nil)
	}
}

func Values(vs ...Value) Results {
	return func(yield func(Value, error) bool) {
		for _, v := range vs {
			if !yield(v, nil) {
				return
			}
		}
	}
}

func Fail(err error) Results {
	return func(yield func(Value, error) bool) {
		yield(nil, err)
	}
}

func Empty() Results {
	return func(func(Value, error) bool) {}
}

// Collect materializes a sequence. Values seen before a failure are
// returned along with it.
func Collect(seq Results) ([]Value, error) {
	var out []Value
	for v, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

// First returns the first value of seq. ok is false when seq was empty.
func First(seq Results) (v Value, ok bool, err error) {
	for v, err := range seq {
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	}
	return nil, false, nil
}

// nodes lifts a slice into a node sequence.
func nodes(ns []Node) iter.Seq2[Node, error] {
	return func(yield func(Node, error) bool) {
		for _, n := range ns {
			if !yield(n, nil) {
				return
			}
		}
	}
}

// asNodes views a value sequence as a node sequence.
func asNodes(seq Results) iter.Seq2[Node, error] {
	return func(yield func(Node, error) bool) {
		for v, err := range seq {
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

// nonEmpty turns an empty sequence into an InferenceError about node.
func nonEmpty(node Node, ctx *Context, seq Results) Results {
	return func(yield func(Value, error) bool) {
		inferred := false
		for v, err := range seq {
			if err != nil {
				yield(nil, err)
				return
			}
			inferred = true
			if !yield(v, nil) {
				return
			}
		}
		if !inferred {
			yield(nil, &InferenceError{Node: node, Context: ctx, Message: "nothing was inferred"})
		}
	}
}
