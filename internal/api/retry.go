package api

import (
	"context"
	"errors"
	"fmt"
)

// MaxWriteAttempts bounds the load-mutate-save cycle of an aggregate.
const MaxWriteAttempts = 3

// RetryOnConflict runs fn until it returns something other than
// ErrVersionConflict. fn must reload the aggregate on every call. Once
// attempts are exhausted the result is ErrConflict.
func RetryOnConflict(ctx context.Context, attempts int, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = fn()
		if !errors.Is(err, ErrVersionConflict) {
			return err
		}
	}
	return fmt.Errorf("%w after %d attempts: %v", ErrConflict, attempts, err)
}
