package config

import "pollscope/pkg/contracts"

// Application constants
const (
	AppName    = "pollscope"
	AppVersion = contracts.Version

	// DefaultSheetCSVURL is the placeholder published-to-web export of the
	// poll spreadsheet. Deployments override it with POLL_SOURCE_URL.
	DefaultSheetCSVURL = "https://docs.google.com/spreadsheets/d/e/TU_ID_AQUI/pub?output=csv"
)

// API paths
const (
	APIBasePath       = "/api"
	PollsEndpoint     = "/api/polls"
	HealthEndpoint    = "/api/health"
	MetricsEndpoint   = "/metrics"
	WebSocketEndpoint = "/ws"
)
