package authenticator

import (
	"context"
	"time"
)

// Sweep drops expired bindings and returns how many were removed.
func (a *Authenticator) Sweep() int {
	if a.ttl == 0 {
		return 0
	}
	now := a.now()
	removed := 0
	_ = a.withBindings(func(bindings map[string]*binding) error {
		for id, b := range bindings {
			if a.expired(b, now) {
				delete(bindings, id)
				removed++
			}
		}
		return nil
	})
	return removed
}

// Run sweeps expired bindings every interval until ctx is done. onSweep, if
// set, receives the number removed by each pass.
func (a *Authenticator) Run(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	if interval <= 0 || a.ttl == 0 {
		<-ctx.Done()
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n := a.Sweep()
			if onSweep != nil {
				onSweep(n)
			}
		}
	}
}
