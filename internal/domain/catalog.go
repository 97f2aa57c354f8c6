package domain

import "context"

// Catalog answers whether a resource key names something that exists at all,
// so callers can distinguish "no such seat" from "seat is busy". Lookup and
// inventory services implement it; the engine only consults it.
type Catalog interface {
	ResourceExists(ctx context.Context, key ResourceKey) (bool, error)
}
