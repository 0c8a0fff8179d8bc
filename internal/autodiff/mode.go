package autodiff

import (
	"log/slog"
	"sync/atomic"
)

var (
	gradDisabled  atomic.Bool
	detectAnomaly atomic.Bool
	packageLogger atomic.Pointer[slog.Logger]
)

// GradEnabled reports whether forward operations currently record backward nodes.
func GradEnabled() bool {
	return !gradDisabled.Load()
}

// NoGrad runs fn with graph recording disabled and restores the previous mode.
func NoGrad(fn func() error) error {
	prev := gradDisabled.Swap(true)
	defer gradDisabled.Store(prev)
	return fn()
}

// SetDetectAnomaly toggles fine-grained mutation diagnostics.
// It only changes the hint attached to stale-version errors.
func SetDetectAnomaly(enabled bool) {
	detectAnomaly.Store(enabled)
}

// AnomalyEnabled reports whether fine-grained mutation diagnostics are on.
func AnomalyEnabled() bool {
	return detectAnomaly.Load()
}

// SetLogger sets the logger used by the package. A nil logger restores slog.Default().
func SetLogger(l *slog.Logger) {
	packageLogger.Store(l)
}

func logger() *slog.Logger {
	if l := packageLogger.Load(); l != nil {
		return l
	}
	return slog.Default()
}
