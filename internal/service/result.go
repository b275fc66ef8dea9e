package service

// result distinguishes a successful value from a degraded one. Degradable
// steps (history load, retrieval) report through it so absorption points log
// the reason uniformly, while public contracts keep returning plain values.
type result[T any] struct {
	value  T
	reason error
}

func success[T any](v T) result[T] {
	return result[T]{value: v}
}

func degraded[T any](v T, reason error) result[T] {
	return result[T]{value: v, reason: reason}
}

func (r result[T]) Value() T { return r.value }

func (r result[T]) Degraded() bool { return r.reason != nil }

func (r result[T]) Reason() error { return r.reason }
