package syncer

import (
	"context"
	"time"
)

// Run performs an initial pass, then drives the periodic re-trigger and the
// connectivity watcher until ctx is cancelled. All triggers go through
// StartSync and therefore respect the
// reentrancy guard; a transition that fires while a pass is running is
// effectively debounced.
func (s *Syncer) Run(ctx context.Context) {
	syncTicker := time.NewTicker(s.opts.SyncInterval)
	defer syncTicker.Stop()
	probeTicker := time.NewTicker(s.opts.OnlineCheckInterval)
	defer probeTicker.Stop()

	online := s.probe.Online(ctx)
	s.StartSync(ctx)

	for {
		select {
		case <-syncTicker.C:
			s.StartSync(ctx)

		case <-probeTicker.C:
			now := s.probe.Online(ctx)
			if now == online {
				continue
			}
			online = now
			if now {
				s.log.Info(ctx, "connectivity restored, triggering sync")
				s.StartSync(ctx)
			} else {
				s.log.Info(ctx, "connectivity lost")
				s.markOffline(ctx)
			}

		case <-ctx.Done():
			return
		}
	}
}

// markOffline records the degraded status without attempting a pass.
func (s *Syncer) markOffline(ctx context.Context) {
	if !s.syncing.CompareAndSwap(false, true) {
		return
	}
	defer s.syncing.Store(false)
	s.degrade(ctx, nil)
}
