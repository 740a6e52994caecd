// main.go
//
// Container healthcheck: loads the configuration, probes the upstream data
// API, and exits nonzero when the service would be unable to serve.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/recorre/indie-comments-cloud/internal/config"
	"github.com/recorre/indie-comments-cloud/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Perform health check
	result := services.HealthCheck(cfg)

	// Output result as JSON
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal health check result: %v", err)
	}

	fmt.Println(string(output))

	// Exit with appropriate code
	if result.Status == "unhealthy" {
		os.Exit(1)
	}
	os.Exit(0)
}
