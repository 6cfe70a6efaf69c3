package sync

import (
	"context"
	"fmt"
	"log/slog"
)

// Result summarizes one sync pass.
type Result struct {
	// Ran is false when the trigger was dropped because a pass was
	// already in flight.
	Ran bool

	// Total is the backlog size the pass started with.
	Total int

	// Synced is how many records were mirrored and marked in this pass.
	Synced int

	// Failed is how many records errored and stay in the backlog.
	Failed int
}

// TriggerSync runs one pass over the backlog: every unsynced record is
// mirrored in turn, and a failing record is skipped rather than aborting the
// pass, so one poisoned row cannot block the rest of the queue.
func (s *Service) TriggerSync(ctx context.Context) (Result, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return Result{}, nil
	}
	defer s.inFlight.Store(false)

	backlog, err := s.store.QueryUnsynced(ctx)
	if err != nil {
		return Result{Ran: true}, fmt.Errorf("query sync backlog: %w", err)
	}

	res := Result{Ran: true, Total: len(backlog)}
	if res.Total == 0 {
		return res, nil
	}

	s.log.InfoContext(ctx, "sync pass started", slog.Int("backlog", res.Total))

	for _, rec := range backlog {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := s.mirror.Mirror(ctx, rec); err != nil {
			res.Failed++
			s.log.WarnContext(ctx, "record sync failed",
				slog.String("record_id", rec.ID.String()),
				slog.String("error", err.Error()),
			)
			continue
		}
		res.Synced++
	}

	s.log.InfoContext(ctx, "sync pass finished",
		slog.Int("synced", res.Synced),
		slog.Int("failed", res.Failed),
	)

	return res, nil
}

// OnConnectivityChange is the monitor subscription hook. An offline to online
// transition starts a pass in the background; going offline does nothing.
func (s *Service) OnConnectivityChange(online bool) {
	if !online {
		return
	}
	go func() {
		if _, err := s.TriggerSync(context.Background()); err != nil {
			s.log.Warn("reconnect sync pass failed", slog.String("error", err.Error()))
		}
	}()
}

// PendingCount reports the current backlog size for the terminal UI.
func (s *Service) PendingCount(ctx context.Context) (int, error) {
	return s.store.CountUnsynced(ctx)
}
