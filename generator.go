package tsnsim

//
// Generators: pluggable sequences driving frame size, priority and timing
//
// Grounded on the generics idiom of internal/optional.Value[T] (itself
// from the teacher's cmd/internal/optional): a small, single-method
// generic interface rather than a channel or callback, so deterministic
// test doubles (constant, slice-backed) and randomized ones share a shape.
//

// Generator produces a sequence of values of type T. Next returns the next
// value and true, or the zero value and false once the sequence is
// exhausted. An [Injector] stops generating frames as soon as either its
// interarrival or its size generator is exhausted (spec.md §5.3).
type Generator[T any] interface {
	Next() (T, bool)
}

// ConstantGenerator is a [Generator] that yields the same value forever.
type ConstantGenerator[T any] struct {
	Value T
}

var _ Generator[float64] = &ConstantGenerator[float64]{}

// Next implements Generator.
func (g *ConstantGenerator[T]) Next() (T, bool) {
	return g.Value, true
}

// SliceGenerator is a [Generator] that yields each element of Values in
// order, then is exhausted.
type SliceGenerator[T any] struct {
	Values []T
	cursor int
}

var _ Generator[int] = &SliceGenerator[int]{}

// Next implements Generator.
func (g *SliceGenerator[T]) Next() (T, bool) {
	if g.cursor >= len(g.Values) {
		var zero T
		return zero, false
	}
	v := g.Values[g.cursor]
	g.cursor++
	return v, true
}

// CountGenerator wraps another [Generator] and exhausts itself after Limit
// values have been produced, regardless of the wrapped generator's own
// exhaustion.
type CountGenerator[T any] struct {
	Inner Generator[T]
	Limit int
	count int
}

var _ Generator[int] = &CountGenerator[int]{}

// Next implements Generator.
func (g *CountGenerator[T]) Next() (T, bool) {
	if g.count >= g.Limit {
		var zero T
		return zero, false
	}
	v, ok := g.Inner.Next()
	if !ok {
		var zero T
		return zero, false
	}
	g.count++
	return v, true
}
