package wait

import (
	"time"

	"github.com/nuvolos-cloud/nuvolos-cli/pkg/nuvolos"
)

// Options tunes the workload and task waits. Unset fields select defaults.
type Options struct {
	// Timeout is the overall budget. Nil selects the wait's default; an
	// explicit zero times out on the first pending tick.
	Timeout *time.Duration
	// Interval is the delay between status queries.
	Interval time.Duration
	// Start is the instant elapsed time is measured from.
	Start time.Time
	Clock Clock
	// Logger receives one debug entry per tick.
	Logger nuvolos.Logger
	// Progress is called after every tick, e.g. to update a status line.
	Progress func(Tick)
}

// Timeout returns d for use as Options.Timeout.
func Timeout(d time.Duration) *time.Duration {
	return &d
}

func (o Options) timeout(fallback time.Duration) time.Duration {
	if o.Timeout != nil {
		return *o.Timeout
	}

	return fallback
}

func (o Options) observer(target string) func(Tick) {
	if o.Logger == nil && o.Progress == nil {
		return nil
	}

	return func(tick Tick) {
		if o.Logger != nil {
			o.Logger.Debug("poll tick", map[string]interface{}{
				"target":  target,
				"tick":    tick.Number,
				"status":  tick.Status,
				"elapsed": tick.Elapsed.String(),
			})
		}

		if o.Progress != nil {
			o.Progress(tick)
		}
	}
}
