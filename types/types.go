// Package types contains shared types used across the wd-launcher runner framework.
package types

import (
	"fmt"
	"strings"
	"time"
)

// WorkerStatus represents the outcome of a single worker session.
type WorkerStatus string

// String implements the Stringer interface for WorkerStatus
func (s WorkerStatus) String() string {
	return string(s)
}

// WorkerStatus enum values
const (
	WorkerStatusPass  WorkerStatus = "pass"
	WorkerStatusFail  WorkerStatus = "fail"
	WorkerStatusError WorkerStatus = "error"
)

// Capability describes a single normalized browser/device target.
type Capability struct {
	BrowserName    string         `yaml:"browserName"`
	BrowserVersion string         `yaml:"browserVersion,omitempty"`
	PlatformName   string         `yaml:"platformName,omitempty"`
	MaxInstances   int            `yaml:"maxInstances,omitempty"`
	Options        map[string]any `yaml:"options,omitempty"`
}

// DisplayName returns a human-readable identifier for the capability.
func (c Capability) DisplayName() string {
	parts := []string{c.BrowserName}
	if c.BrowserVersion != "" {
		parts = append(parts, c.BrowserVersion)
	}
	if c.PlatformName != "" {
		parts = append(parts, c.PlatformName)
	}
	return strings.Join(parts, " ")
}

// RunConfig is the normalized run definition handed to the hook engine,
// the worker pool and the service plugins. It is produced once by the
// registry and never mutated afterwards.
type RunConfig struct {
	Specs        []string     `yaml:"specs"`
	BaseURL      string       `yaml:"baseUrl,omitempty"`
	MaxWorkers   int          `yaml:"maxWorkers,omitempty"`
	Capabilities []Capability `yaml:"capabilities"`
	Services     []string     `yaml:"services,omitempty"`
	LogLevel     string       `yaml:"logLevel,omitempty"`
	OutputDir    string       `yaml:"outputDir,omitempty"`
}

// WorkerResult is the outcome of one worker session (one capability running
// one group of spec files).
type WorkerResult struct {
	WorkerID   string
	Capability Capability
	Specs      []string
	Status     WorkerStatus
	Duration   time.Duration
	Error      string
}

// ResultSummary aggregates the outcome of a complete run. It is the results
// argument forwarded to every post-run hook.
type ResultSummary struct {
	RunID    string
	Total    int
	Passed   int
	Failed   int
	Duration time.Duration
	Workers  []WorkerResult
}

// Status derives the overall run status from the per-worker outcomes.
func (s *ResultSummary) Status() WorkerStatus {
	if s.Failed > 0 {
		return WorkerStatusFail
	}
	if s.Total == 0 {
		return WorkerStatusError
	}
	return WorkerStatusPass
}

// String returns a one-line summary suitable for console output.
func (s *ResultSummary) String() string {
	return fmt.Sprintf("run %s: %d workers, %d passed, %d failed (%s)",
		s.RunID, s.Total, s.Passed, s.Failed, s.Duration.Truncate(time.Millisecond))
}
