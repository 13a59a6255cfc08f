// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fanout runs one concurrent search per enabled source adapter and
// collects the per-source outcomes. Failures stay inside their source's
// envelope; one broken provider never aborts its siblings.
package fanout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/litsearch/internal/source"
	"github.com/pdiddy/litsearch/pkg/types"
)

// accessDeniedMessage is the stable envelope error for a blocked provider,
// so operators can tell throttling apart from a broken integration.
const accessDeniedMessage = "source temporarily blocked (HTTP 403)"

const defaultSourceTimeout = 30 * time.Second

// Orchestrator owns the enabled adapters and fans a query out to all of
// them in parallel. One goroutine per adapter; concurrency equals the
// number of enabled sources.
type Orchestrator struct {
	adapters []source.Adapter
	cfg      types.SearchConfig
	w        io.Writer
}

// New builds an orchestrator over the given adapters. w receives per-source
// warnings; nil discards them.
func New(adapters []source.Adapter, cfg types.SearchConfig, w io.Writer) *Orchestrator {
	if w == nil {
		w = io.Discard
	}
	return &Orchestrator{adapters: adapters, cfg: cfg, w: w}
}

// Adapters returns the names of the enabled adapters.
func (o *Orchestrator) Adapters() []string {
	names := make([]string, len(o.adapters))
	for i, a := range o.adapters {
		names[i] = a.Name()
	}
	return names
}

// Run queries every enabled, non-excluded adapter concurrently and waits
// for all of them. Each adapter gets its own timeout; an error, timeout, or
// caller cancellation becomes that source's envelope error while every
// other envelope is unaffected. The map holds one envelope per queried
// source.
func (o *Orchestrator) Run(ctx context.Context, query string, excluded []string) map[string]types.SourceEnvelope {
	skip := make(map[string]struct{}, len(excluded))
	for _, name := range excluded {
		skip[name] = struct{}{}
	}

	var run []source.Adapter
	for _, a := range o.adapters {
		if _, ok := skip[a.Name()]; ok {
			continue
		}
		run = append(run, a)
	}

	ch := make(chan types.SourceEnvelope, len(run))
	g := &errgroup.Group{}
	for _, a := range run {
		a := a
		g.Go(func() error {
			ch <- o.searchOne(ctx, a, query)
			// Errors stay in the envelope; never cancel siblings.
			return nil
		})
	}
	g.Wait()
	close(ch)

	envelopes := make(map[string]types.SourceEnvelope, len(run))
	for env := range ch {
		envelopes[env.SourceName] = env
	}
	return envelopes
}

// searchOne issues a single adapter call under its timeout and converts the
// outcome into an envelope.
func (o *Orchestrator) searchOne(ctx context.Context, a source.Adapter, query string) types.SourceEnvelope {
	timeout := o.cfg.SourceTimeout
	if cfg, ok := o.cfg.Sources[a.Name()]; ok && cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}
	if timeout <= 0 {
		timeout = defaultSourceTimeout
	}

	limit := o.cfg.MaxResults
	if cfg, ok := o.cfg.Sources[a.Name()]; ok && cfg.MaxResults > 0 {
		limit = cfg.MaxResults
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	records, err := a.Search(cctx, query, limit)
	elapsed := time.Since(start)

	env := types.SourceEnvelope{
		SourceName:  a.Name(),
		Query:       query,
		Records:     records,
		RecordCount: len(records),
		Elapsed:     elapsed,
	}
	if err != nil {
		env.Records = nil
		env.RecordCount = 0
		env.Error = err.Error()
		if errors.Is(err, source.ErrAccessDenied) {
			env.Error = accessDeniedMessage
		}
		fmt.Fprintf(o.w, "warning: source %s failed: %v\n", a.Name(), err)
	}
	return env
}
