package archive

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jpfielding/img2pacs/pkg/cache"
	"github.com/jpfielding/img2pacs/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

// CachingFinder remembers resolved names and collapses concurrent lookups
// of the same identifier into one call of the wrapped finder. Only Resolved
// outcomes are cached so a patient registered later is still found.
type CachingFinder struct {
	Next    PatientFinder
	Cache   cache.Cache
	TTL     time.Duration
	Archive string // cache key namespace, usually the address
	Metrics *metrics.Metrics
	Log     *slog.Logger

	group singleflight.Group
}

func (f *CachingFinder) FindPatient(ctx context.Context, patientID string) *Task[LookupOutcome] {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return Completed(LookupOutcome{Status: Empty}, nil)
	}
	return Start(ctx, func(ctx context.Context) (LookupOutcome, error) {
		store := f.Cache
		if store == nil {
			store = cache.Noop{}
		}
		key := cache.PatientKey(f.Archive, patientID)
		if name, err := store.Get(ctx, key); err == nil {
			f.Metrics.CacheHit()
			return LookupOutcome{Status: Resolved, Name: string(name)}, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			f.logger().WarnContext(ctx, "lookup cache read failed", "key", key, "error", err)
		}

		// the shared call outlives any single caller so a superseded
		// request does not cancel the others waiting on it
		ch := f.group.DoChan(patientID, func() (interface{}, error) {
			outcome, err := f.Next.FindPatient(context.WithoutCancel(ctx), patientID).Wait(context.WithoutCancel(ctx))
			if err != nil {
				return outcome, err
			}
			f.Metrics.Lookup(outcome.Status.String())
			if outcome.Status == Resolved {
				if err := store.Set(context.WithoutCancel(ctx), key, []byte(outcome.Name), f.TTL); err != nil {
					f.logger().WarnContext(ctx, "lookup cache write failed", "key", key, "error", err)
				}
			}
			return outcome, nil
		})
		select {
		case res := <-ch:
			if res.Err != nil {
				return LookupOutcome{}, res.Err
			}
			return res.Val.(LookupOutcome), nil
		case <-ctx.Done():
			return LookupOutcome{}, ctx.Err()
		}
	})
}

func (f *CachingFinder) logger() *slog.Logger {
	return orDiscard(f.Log)
}
