// Package metrics exposes the gateway's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProviderCalls counts outbound provider API calls by provider,
	// operation and outcome ("ok", "provider_error", "network_error").
	ProviderCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bnpl",
		Name:      "provider_calls_total",
		Help:      "Outbound BNPL provider API calls.",
	}, []string{"provider", "operation", "outcome"})

	// ProviderCallDuration observes outbound call latency per provider and operation.
	ProviderCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bnpl",
		Name:      "provider_call_duration_seconds",
		Help:      "Latency of outbound BNPL provider API calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"provider", "operation"})

	// WebhooksReceived counts inbound webhooks by provider and result
	// ("accepted", "discarded", "signature_rejected", "parse_error").
	WebhooksReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bnpl",
		Name:      "webhooks_received_total",
		Help:      "Inbound BNPL provider webhooks by result.",
	}, []string{"provider", "result"})
)
