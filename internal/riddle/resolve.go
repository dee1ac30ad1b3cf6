package riddle

import (
	"context"
	"errors"

	"github.com/brainteaserday/server/internal/daykey"
)

// ErrUnavailable means no riddle could be produced for the day (empty
// catalog and no usable override/schedule entry).
var ErrUnavailable = errors.New("no riddle available")

// Resolver determines the effective riddle for a day key.
type Resolver struct {
	store *Store
}

func NewResolver(store *Store) *Resolver { return &Resolver{store: store} }

// Resolve applies the precedence: override, then schedule, then the
// deterministic catalog pick. The result is stable for a given day as long
// as no admin action intervenes; the Version field changes when one does.
func (r *Resolver) Resolve(ctx context.Context, dayKey string) (Resolved, error) {
	version, err := r.store.Version(ctx, dayKey)
	if err != nil {
		return Resolved{}, err
	}

	if e, err := r.store.Override(ctx, dayKey); err != nil {
		return Resolved{}, err
	} else if e != nil {
		if rd, ok, err := r.materialize(ctx, e); err != nil {
			return Resolved{}, err
		} else if ok {
			return Resolved{Riddle: rd, Source: SourceOverride, Version: version}, nil
		}
	}

	if e, err := r.store.Schedule(ctx, dayKey); err != nil {
		return Resolved{}, err
	} else if e != nil {
		if rd, ok, err := r.materialize(ctx, e); err != nil {
			return Resolved{}, err
		} else if ok {
			return Resolved{Riddle: rd, Source: SourceSchedule, Version: version}, nil
		}
	}

	rd, err := r.fallback(ctx, dayKey)
	if err != nil {
		return Resolved{}, err
	}
	return Resolved{Riddle: rd, Source: SourceDefault, Version: version}, nil
}

// materialize turns an entry into a riddle. A catalog reference that points
// at a missing id, or a custom entry with no question/answer, yields ok=false
// so resolution falls through to the next precedence level.
func (r *Resolver) materialize(ctx context.Context, e *Entry) (Riddle, bool, error) {
	if e.RiddleID != nil {
		rd, err := r.store.ByID(ctx, *e.RiddleID)
		if err == nil {
			return rd, true, nil
		}
		return Riddle{}, false, nil
	}
	if e.Question != "" && e.Type.Valid() && e.Answer != "" {
		return Riddle{
			ID:          CustomID,
			Type:        e.Type,
			Question:    e.Question,
			Answer:      e.Answer,
			Explanation: e.Explanation,
		}, true, nil
	}
	return Riddle{}, false, nil
}

func (r *Resolver) fallback(ctx context.Context, key string) (Riddle, error) {
	n, err := r.store.Count(ctx)
	if err != nil {
		return Riddle{}, err
	}
	if n == 0 {
		return Riddle{}, ErrUnavailable
	}
	return r.store.ByIndex(ctx, daykey.FallbackIndex(key, n))
}

// Archive resolves each played past day the way it was resolved at the time,
// answers included. Override and schedule rows are kept after the day passes
// precisely so this stays faithful.
func (r *Resolver) Archive(ctx context.Context, today string, limit, offset int) ([]ArchiveRow, error) {
	days, err := r.store.ArchiveDays(ctx, today, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]ArchiveRow, 0, len(days))
	for _, d := range days {
		res, err := r.Resolve(ctx, d)
		if err != nil {
			if errors.Is(err, ErrUnavailable) {
				continue
			}
			return nil, err
		}
		out = append(out, ArchiveRow{
			DayKey:      d,
			Source:      res.Source,
			Type:        res.Riddle.Type,
			Question:    res.Riddle.Question,
			Answer:      res.Riddle.Answer,
			Explanation: res.Riddle.Explanation,
		})
	}
	return out, nil
}
