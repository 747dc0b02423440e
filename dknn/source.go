package dknn

import "context"

// Source extracts the per-layer activations of a batch of inputs. It must
// be deterministic: the same batch yields the same activations.
type Source[T any] interface {
	Activations(ctx context.Context, batch []T) (Activations, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc[T any] func(ctx context.Context, batch []T) (Activations, error)

// Activations calls f.
func (f SourceFunc[T]) Activations(ctx context.Context, batch []T) (Activations, error) {
	return f(ctx, batch)
}
