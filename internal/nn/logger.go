package nn

import (
	"log/slog"
	"sync/atomic"

	"github.com/born-ml/convnet/internal/parallel"
)

var (
	logger  atomic.Pointer[slog.Logger]
	workers atomic.Pointer[parallel.Config]
)

// SetLogger replaces the logger used for recovered warnings such as
// drop-probability clamping. A nil logger restores slog.Default().
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

func log() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// SetParallelism sets the fan-out used inside layer passes.
// parallel.Sequential() makes every pass run on the calling goroutine.
func SetParallelism(cfg parallel.Config) {
	workers.Store(&cfg)
}

func fanout() parallel.Config {
	if cfg := workers.Load(); cfg != nil {
		return *cfg
	}
	return parallel.DefaultConfig()
}
