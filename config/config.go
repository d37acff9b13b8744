package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"

	"probe-relay/logger"
	"probe-relay/models"

	"gopkg.in/yaml.v2"
)

const AppName = "probe-relay"

// Version is overridden at build time with -ldflags "-X probe-relay/config.Version=...".
var Version = "1.0.0"

// UserAgent identifies the relay in probe and report requests.
func UserAgent() string {
	return AppName + "/" + Version
}

const ExampleConfigYAML = `# Example probe-relay config.yaml
# ${VARIABLES} are replaced from the environment before parsing.

server:
  log_level: error

report:
  endpoint: "https://status.example.com"
  token: "${PROBE_RELAY_TOKEN}"

metrics:
  interval: 120
  poll_retry: 2
  poll_delay_dead: 10
  poll_delay_sick: 1
  poll_http_status_healthy_above: 200
  poll_http_status_healthy_below: 400
  poll_icmp_privileged: true

probe:
  service:
    - id: web
      node:
        - id: router
          mode: poll
          replicas:
            - icmp://192.168.1.1
            - tcp://192.168.1.1:443
            - https://192.168.1.1/health
    - id: jobs
      node:
        - id: backup
          mode: script
          scripts:
            - /usr/local/bin/check-backup.sh
`

// LoadConfig reads, expands and validates the config file. Any error is fatal:
// the relay must not start on a partially valid configuration.
func LoadConfig(path string) (*models.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	return Parse(data)
}

var envReference = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ExpandEnv replaces ${NAME} references with the value of the environment
// variable NAME. Unset names and every other use of $ are left untouched so
// shell scripts keep their own variables.
func ExpandEnv(data []byte) []byte {
	return envReference.ReplaceAllFunc(data, func(ref []byte) []byte {
		name := string(ref[2 : len(ref)-1])
		if value, ok := os.LookupEnv(name); ok {
			return []byte(value)
		}
		return ref
	})
}

// Parse decodes a config document on top of the defaults.
func Parse(data []byte) (*models.Config, error) {
	cfg := models.DefaultConfig()
	if err := yaml.UnmarshalStrict(ExpandEnv(data), cfg); err != nil {
		return nil, fmt.Errorf("could not parse YAML: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks what the YAML decoder cannot.
func Validate(cfg *models.Config) error {
	if _, err := logger.ParseLevel(cfg.Server.LogLevel); err != nil {
		return fmt.Errorf("server.log_level: %w", err)
	}

	if cfg.Report.Endpoint == "" {
		return errors.New("report.endpoint is required")
	}
	endpoint, err := url.Parse(cfg.Report.Endpoint)
	if err != nil || (endpoint.Scheme != "http" && endpoint.Scheme != "https") || endpoint.Host == "" {
		return fmt.Errorf("report.endpoint %q must be an http or https url", cfg.Report.Endpoint)
	}
	if cfg.Report.Token == "" {
		return errors.New("report.token is required")
	}

	m := cfg.Metrics
	if m.Interval == 0 {
		return errors.New("metrics.interval must be greater than zero")
	}
	if m.PollDelayDead == 0 {
		return errors.New("metrics.poll_delay_dead must be greater than zero")
	}
	if m.PollHTTPStatusHealthyAbove >= m.PollHTTPStatusHealthyBelow {
		return fmt.Errorf("metrics.poll_http_status_healthy_above (%d) must be lower than poll_http_status_healthy_below (%d)",
			m.PollHTTPStatusHealthyAbove, m.PollHTTPStatusHealthyBelow)
	}

	for i, service := range cfg.Probe.Services {
		if service.ID == "" {
			return fmt.Errorf("probe.service[%d]: id is required", i)
		}
		for j, node := range service.Nodes {
			if node.ID == "" {
				return fmt.Errorf("probe.service[%s].node[%d]: id is required", service.ID, j)
			}
			if node.Mode == "" {
				return fmt.Errorf("probe.service[%s].node[%s]: mode is required", service.ID, node.ID)
			}
		}
	}
	return nil
}

// EnsureConfig writes the example config to path when no file exists there.
// It reports whether it did so; the caller should then exit and let the user
// edit the file.
func EnsureConfig(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("unable to access config path: %w", err)
	}

	fmt.Printf("⚠️  Config file not found at: %s\n", path)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(ExampleConfigYAML), 0644); err != nil {
		return false, fmt.Errorf("failed to create example config file: %w", err)
	}

	fmt.Printf("\n✅ Created example config file at: %s\n", path)
	fmt.Println("📝 Please edit the file before starting the relay.")
	fmt.Println("----------------------------------------------------")
	fmt.Print(ExampleConfigYAML)
	fmt.Println("----------------------------------------------------")

	return true, nil
}
