package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/feedwatch/feedwatch/internal/contract"
	"github.com/feedwatch/feedwatch/schema"
)

// RecordLoader loads historical arrival records for the lookback window.
type RecordLoader interface {
	LoadRecords(now time.Time, lookbackDays int) ([]schema.MetricsRecord, error)
}

// Engine runs one detection pass end to end: load state, load history,
// evaluate every feed, persist the new state.
type Engine struct {
	cfg     *contract.Config
	loader  RecordLoader
	store   contract.StateStore
	scanner contract.FolderScanner
	log     *contract.Logger
}

// NewEngine wires an Engine from its dependencies.
func NewEngine(cfg *contract.Config, loader RecordLoader, store contract.StateStore,
	scanner contract.FolderScanner, log *contract.Logger) *Engine {
	return &Engine{cfg: cfg, loader: loader, store: store, scanner: scanner, log: log}
}

// Run executes one detection pass anchored at now and returns the findings in
// deterministic feed-key order. State is saved once, after every feed has
// been evaluated; a failed metrics load aborts before any state mutation.
func (e *Engine) Run(now time.Time) ([]schema.Finding, error) {
	states, err := e.store.Load()
	if err != nil {
		if !errors.Is(err, contract.ErrStateCorrupt) {
			return nil, fmt.Errorf("loading alert state: %w", err)
		}
		e.log.Warnf("alert state unreadable, starting from empty: %v", err)
		states = make(map[schema.FeedKey]schema.AlertState)
	}

	records, err := e.loader.LoadRecords(now, e.cfg.Lookback)
	if err != nil {
		return nil, fmt.Errorf("loading metrics records: %w", err)
	}
	e.log.Debugf("loaded %d records over %d days", len(records), e.cfg.Lookback)

	groups := GroupRecords(records)
	evaluator := NewEvaluator(e.cfg, e.scanner, e.log)

	var findings []schema.Finding
	nextStates := make(map[schema.FeedKey]schema.AlertState, len(groups))
	for _, key := range SortedKeys(groups) {
		if !e.cfg.WantsFeed(key) {
			continue
		}
		historical, todays := SplitByDay(groups[key], now)
		prior, hasPrior := states[key]
		finding, next := evaluator.Evaluate(key, historical, todays, prior, hasPrior, now)
		nextStates[key] = next
		if finding != nil {
			findings = append(findings, *finding)
		}
	}

	// Feeds absent from this lookback keep their prior state so a long gap
	// does not reset the unchanged-arrival suppression.
	for key, prior := range states {
		if _, seen := nextStates[key]; !seen {
			nextStates[key] = prior
		}
	}

	if err := e.store.Save(nextStates); err != nil {
		return nil, fmt.Errorf("saving alert state: %w", err)
	}

	e.log.Infof("evaluated %d feeds, %d findings", len(groups), len(findings))
	return findings, nil
}
