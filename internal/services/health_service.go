package services

import (
	"context"
	"log/slog"
	"runtime"
	"strconv"
	"time"

	"pollscope/pkg/contracts"
)

// StatusProvider reports the refresh state of the poll data
type StatusProvider interface {
	Status() RefreshStatus
}

// ClientCounter reports connected WebSocket clients
type ClientCounter interface {
	ClientCount() int
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	polls     StatusProvider
	clients   ClientCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a health service. clients may be nil.
func NewHealthService(version string, polls StatusProvider, clients ClientCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized", slog.String("version", version))

	return &HealthService{
		version:   version,
		polls:     polls,
		clients:   clients,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.Debug("HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck is ready once poll data has been loaded
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"data":      hs.checkDataHealth(),
			"websocket": hs.checkWebSocketHealth(),
		},
	}

	for _, sh := range status.Services {
		if sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	result := map[string]interface{}{
		"version":      hs.version,
		"api_version":  info.APIVersion,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
	if info.BuildTime != "" && info.BuildTime != "unknown" {
		result["build_time"] = info.BuildTime
	}
	if info.GitCommit != "" && info.GitCommit != "unknown" {
		result["git_commit"] = info.GitCommit
	}
	return result
}

func (hs *HealthService) checkDataHealth() ServiceHealth {
	if hs.polls == nil {
		return ServiceHealth{Status: "not_ready", Message: "poll service not initialized"}
	}

	st := hs.polls.Status()
	if !st.Loaded {
		msg := "poll data not loaded yet"
		if st.LastError != "" {
			msg = "poll data not loaded: " + st.LastError
		}
		return ServiceHealth{Status: "not_ready", Message: msg}
	}

	health := ServiceHealth{Status: "ready", Message: "poll data loaded"}
	if st.LastUpdated != nil {
		health.Uptime = time.Since(*st.LastUpdated).Round(time.Second).String()
	}
	if st.LastError != "" {
		health.Message = "serving previous snapshot: " + st.LastError
	}
	return health
}

func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	health := ServiceHealth{
		Status: "ready",
		Uptime: time.Since(hs.startTime).String(),
	}
	if hs.clients != nil {
		health.Message = "clients: " + strconv.Itoa(hs.clients.ClientCount())
	}
	return health
}
