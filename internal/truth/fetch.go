package truth

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// #region bundle

// Bundle holds everything one request needs from the analytical store.
type Bundle struct {
	Rows    []TruthRow
	Profile BusinessProfile
	Rules   []PolicyRule
}

// Window is the inclusive date range to fetch. When Dates is non-empty the
// window is an explicit date set instead of a range.
type Window struct {
	From  time.Time
	To    time.Time
	Dates []time.Time
}

// #endregion bundle

// #region fetch-bundle

// FetchBundle issues the row, profile, and rule queries concurrently, each
// under its own timeout. All queries complete (or fail) before derivation and
// ranking start; the first error wins.
func FetchBundle(ctx context.Context, s *Store, location string, w Window, perQueryTimeout time.Duration) (Bundle, error) {
	var b Bundle
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		qctx, cancel := context.WithTimeout(gctx, perQueryTimeout)
		defer cancel()
		var err error
		if len(w.Dates) > 0 {
			b.Rows, err = s.SelectedDays(qctx, location, w.Dates)
		} else {
			b.Rows, err = s.Range(qctx, location, w.From, w.To)
		}
		return err
	})

	g.Go(func() error {
		qctx, cancel := context.WithTimeout(gctx, perQueryTimeout)
		defer cancel()
		var err error
		b.Profile, err = s.Profile(qctx, location)
		return err
	})

	g.Go(func() error {
		qctx, cancel := context.WithTimeout(gctx, perQueryTimeout)
		defer cancel()
		var err error
		b.Rules, err = s.Rules(qctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return Bundle{}, err
	}
	return b, nil
}

// #endregion fetch-bundle
