package services

import (
	"fmt"
	"log"

	"github.com/recorre/indie-comments-cloud/internal/config"
	"github.com/recorre/indie-comments-cloud/internal/utils"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Upstream     string            `json:"upstream"`
	Credential   string            `json:"credential"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// HealthCheck reports whether the upstream data service is reachable and
// whether the proxy credential is configured. A missing credential degrades
// the service (the generic proxy fails per request) but does not make it
// unhealthy; the widget and panel static surfaces still work.
func HealthCheck(cfg *config.Config) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	if err := utils.PingUpstream(cfg.UpstreamBaseURL); err != nil {
		result.Status = "unhealthy"
		result.Upstream = "unreachable"
		result.Details["upstream_error"] = err.Error()
		result.ErrorMessage = fmt.Sprintf("Upstream ping failed: %v", err)
		log.Printf("Health check failed - upstream ping: %v", err)
	} else {
		result.Upstream = "ok"
		result.Details["upstream_url"] = cfg.UpstreamBaseURL
		result.Details["instance"] = cfg.UpstreamInstance
	}

	if cfg.UpstreamAPIKey == "" {
		if result.Status == "healthy" {
			result.Status = "degraded"
		}
		result.Credential = "missing"
		result.Details["credential_hint"] = "set NOCODEBACKEND_API_KEY"
	} else {
		result.Credential = "configured"
	}

	if result.Status == "healthy" {
		log.Println("Health check passed - all systems operational")
	}

	return result
}
