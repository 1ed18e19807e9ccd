package utils

import (
	"time"
)

// Campaign execution constants
const (
	// SchedulerTimezone is the single wall-clock timezone every schedule is
	// interpreted in. Schedules are user-facing calendar concepts, so this is
	// deliberately not UTC and not the server's local zone.
	SchedulerTimezone = "America/New_York"

	// BoardPageSize is the maximum number of rows requested per board page
	BoardPageSize = 100

	// BoardMaxPages caps pagination so a misbehaving cursor cannot loop forever
	BoardMaxPages = 50

	// SendDelay is the fixed pause between consecutive dispatches within one
	// execution, bounding outbound throughput to 30 messages per minute
	SendDelay = 2 * time.Second

	// OnceScheduleGrace is how far past its target a "once" schedule may be
	// before the trigger expires it instead of firing it
	OnceScheduleGrace = 2 * time.Minute

	// ProviderTimeout bounds every board fetch and dispatch HTTP call
	ProviderTimeout = 30 * time.Second

	// MaxFailureReasons caps how many per-row failure reasons are kept in the
	// execution's diagnostic note
	MaxFailureReasons = 10
)

// ContextKey is the type for request-scoped context values
type ContextKey string

// Context keys for request-scoped values
const (
	RequestIDKey ContextKey = "request_id"
	UserAgentKey ContextKey = "user_agent"
	IPAddressKey ContextKey = "ip_address"
	EndpointKey  ContextKey = "endpoint"
)
