package registry

import (
	"context"
	"time"
)

// nowFunc is overridden in tests that need deterministic timestamps.
var nowFunc = time.Now

func timeoutContext() context.Context {
	ctx, _ := context.WithTimeout(context.Background(), 2*time.Second)
	return ctx
}
