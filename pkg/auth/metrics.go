package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TokenRequests tracks token endpoint requests by outcome
	TokenRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reddit_token_requests_total",
			Help: "Total number of OAuth token requests",
		},
		[]string{"status"}, // "success", "error"
	)

	// TokenStoreHits tracks token store hits by layer
	TokenStoreHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reddit_token_store_hits_total",
			Help: "Total number of token store hits",
		},
		[]string{"layer"}, // "memory", "redis"
	)

	// TokenStoreMisses tracks token store misses
	TokenStoreMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reddit_token_store_misses_total",
			Help: "Total number of token store misses",
		},
	)

	// TokenStoreErrors tracks token store operation errors
	TokenStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reddit_token_store_errors_total",
			Help: "Total number of token store operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
