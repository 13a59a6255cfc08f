// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source implements the per-provider search adapters. Each adapter
// translates one free-text query into normalized records from a single
// bibliographic provider; adapters never share state and never block each
// other.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pdiddy/litsearch/pkg/types"
)

// Adapter searches a single bibliographic provider. Each provider
// implements this interface per the Strategy pattern.
type Adapter interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]types.Record, error)
}

// ErrAccessDenied marks a provider rejecting the request outright (HTTP
// 403, revoked key, IP block). Callers use it to tell "temporarily
// blocked" apart from "broken integration".
var ErrAccessDenied = errors.New("access denied by provider")

// checkStatus converts a non-200 response into an adapter error,
// classifying 403 as ErrAccessDenied.
func checkStatus(resp *http.Response, sourceName string) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusForbidden:
		return fmt.Errorf("%s API: %w", sourceName, ErrAccessDenied)
	default:
		return fmt.Errorf("%s API returned HTTP %d", sourceName, resp.StatusCode)
	}
}

// clampLimit applies the source's configured cap and a fallback default.
func clampLimit(limit int, cfg types.SourceConfig, def int) int {
	if limit <= 0 {
		limit = def
	}
	if cfg.MaxResults > 0 && limit > cfg.MaxResults {
		limit = cfg.MaxResults
	}
	return limit
}
