// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"net/http"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/litsearch/internal/source"
	"github.com/pdiddy/litsearch/pkg/types"
)

const defaultUserAgent = "litsearch/" + "0.1"

// searchConfig assembles the search configuration from config file and
// environment, with secrets filling provider credentials that are not set
// explicitly.
func searchConfig() types.SearchConfig {
	viper.SetDefault("search.max_results", 20)
	viper.SetDefault("search.source_timeout", "30s")
	viper.SetDefault("http.timeout", "30s")
	viper.SetDefault("http.user_agent", defaultUserAgent)

	cfg := types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("http.timeout"),
			UserAgent: viper.GetString("http.user_agent"),
		},
		MaxResults:     viper.GetInt("search.max_results"),
		SourceTimeout:  viper.GetDuration("search.source_timeout"),
		SourcePriority: viper.GetStringSlice("search.source_priority"),
		Sources:        map[string]types.SourceConfig{},
	}

	for _, name := range types.DefaultSourcePriority {
		sc := types.SourceConfig{Enabled: true}
		sub := viper.Sub("sources." + name)
		if sub != nil {
			sub.SetDefault("enabled", true)
			sc.Enabled = sub.GetBool("enabled")
			sc.Timeout = sub.GetDuration("timeout")
			sc.MaxResults = sub.GetInt("max_results")
			sc.APIKey = sub.GetString("api_key")
			sc.Email = sub.GetString("email")
			sc.MinRelevance = sub.GetFloat64("min_relevance")
			sc.DaysBack = sub.GetInt("days_back")
		}

		switch name {
		case "pubmed":
			sc.APIKey = secretDefault("ncbi-api-key", sc.APIKey)
		case "semantic_scholar":
			sc.APIKey = secretDefault("semantic-scholar-api-key", sc.APIKey)
		case "europe_pmc":
			sc.Email = secretDefault("europepmc-email", sc.Email)
		}
		cfg.Sources[name] = sc
	}

	return cfg
}

// rerankConfig assembles the rerank configuration. Unset values fall back
// to engine defaults.
func rerankConfig() types.RerankConfig {
	viper.SetDefault("rerank.cache_size", 4096)

	weights := types.DefaultWeights()
	if viper.IsSet("rerank.weights.relevance") {
		weights.Relevance = viper.GetFloat64("rerank.weights.relevance")
	}
	if viper.IsSet("rerank.weights.authority") {
		weights.Authority = viper.GetFloat64("rerank.weights.authority")
	}
	if viper.IsSet("rerank.weights.recency") {
		weights.Recency = viper.GetFloat64("rerank.weights.recency")
	}
	if viper.IsSet("rerank.weights.quality") {
		weights.Quality = viper.GetFloat64("rerank.weights.quality")
	}

	var blend map[string]float64
	if viper.IsSet("rerank.relevance_blend") {
		blend = map[string]float64{}
		for name, v := range viper.GetStringMap("rerank.relevance_blend") {
			switch f := v.(type) {
			case float64:
				blend[name] = f
			case int:
				blend[name] = float64(f)
			}
		}
	}

	return types.RerankConfig{
		Weights:          weights,
		RelevanceBlend:   blend,
		CacheSize:        viper.GetInt("rerank.cache_size"),
		RecencyDecayDays: viper.GetInt("rerank.recency_decay_days"),
	}
}

// historyConfig assembles the history-store configuration.
func historyConfig() types.HistoryConfig {
	viper.SetDefault("history.dir", ".litsearch")
	return types.HistoryConfig{Dir: viper.GetString("history.dir")}
}

// buildAdapters constructs one adapter per enabled source, sharing a
// single HTTP client.
func buildAdapters(cfg types.SearchConfig) []source.Adapter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &http.Client{Timeout: timeout}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	var adapters []source.Adapter
	for _, name := range types.DefaultSourcePriority {
		sc := cfg.Sources[name]
		if !sc.Enabled {
			continue
		}
		switch name {
		case "pubmed":
			adapters = append(adapters, &source.PubMedAdapter{Client: client, Config: sc, UserAgent: ua})
		case "europe_pmc":
			adapters = append(adapters, &source.EuropePMCAdapter{Client: client, Config: sc, UserAgent: ua})
		case "semantic_scholar":
			adapters = append(adapters, &source.SemanticScholarAdapter{Client: client, Config: sc, UserAgent: ua})
		case "clinical_trials":
			adapters = append(adapters, &source.ClinicalTrialsAdapter{Client: client, Config: sc, UserAgent: ua})
		case "nih_reporter":
			adapters = append(adapters, &source.NIHReporterAdapter{Client: client, Config: sc, UserAgent: ua})
		case "biorxiv", "medrxiv":
			adapters = append(adapters, source.NewPreprintAdapter(client, sc, ua, name))
		}
	}
	return adapters
}
