package models

import "time"

type Server struct {
	LogLevel string `yaml:"log_level"`
}

type Report struct {
	Endpoint string `yaml:"endpoint"`
	Token    string `yaml:"token"`
}

// Metrics holds the probing thresholds. Durations are expressed in whole seconds.
type Metrics struct {
	Interval                   uint64 `yaml:"interval"`
	PollRetry                  uint8  `yaml:"poll_retry"`
	PollDelayDead              uint64 `yaml:"poll_delay_dead"`
	PollDelaySick              uint64 `yaml:"poll_delay_sick"`
	PollHTTPStatusHealthyAbove uint16 `yaml:"poll_http_status_healthy_above"`
	PollHTTPStatusHealthyBelow uint16 `yaml:"poll_http_status_healthy_below"`
	PollHTTPBodyHealthyMatch   *Regex `yaml:"poll_http_body_healthy_match"`
	PollICMPPrivileged         bool   `yaml:"poll_icmp_privileged"`
}

type Probe struct {
	Services []Service `yaml:"service"`
}

type Service struct {
	ID    string `yaml:"id"`
	Nodes []Node `yaml:"node"`
}

type Node struct {
	ID       string    `yaml:"id"`
	Mode     Mode      `yaml:"mode"`
	Replicas []Replica `yaml:"replicas"`
	Scripts  []string  `yaml:"scripts"`
}

type Config struct {
	Server  Server  `yaml:"server"`
	Report  Report  `yaml:"report"`
	Metrics Metrics `yaml:"metrics"`
	Probe   Probe   `yaml:"probe"`
}

// DefaultConfig returns a Config carrying every default value. Decoding a file on
// top of it only overrides the keys that are present.
func DefaultConfig() *Config {
	return &Config{
		Server: Server{LogLevel: "error"},
		Metrics: Metrics{
			Interval:                   120,
			PollRetry:                  2,
			PollDelayDead:              10,
			PollDelaySick:              1,
			PollHTTPStatusHealthyAbove: 200,
			PollHTTPStatusHealthyBelow: 400,
			PollICMPPrivileged:         true,
		},
	}
}

func (m Metrics) IntervalDuration() time.Duration {
	return time.Duration(m.Interval) * time.Second
}

// DeadTimeout is the connect, read and write timeout applied to every probe.
func (m Metrics) DeadTimeout() time.Duration {
	return time.Duration(m.PollDelayDead) * time.Second
}

// SickLatency is the latency at or above which a reachable replica is sick.
func (m Metrics) SickLatency() time.Duration {
	return time.Duration(m.PollDelaySick) * time.Second
}
