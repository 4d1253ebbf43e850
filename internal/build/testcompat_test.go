package build

import (
	"context"
	"testing"
)

// testContext mirrors (*testing.T).Context from newer Go releases: it
// returns a context canceled when the test finishes.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
