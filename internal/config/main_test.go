package config

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain asserts no goroutine leaks across this package's tests:
// BundleWatcher.Start is the one goroutine this core spawns outside a
// provider's own browser process, and Stop must always drain it.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
