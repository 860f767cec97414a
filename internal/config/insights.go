package config

import (
	"os"
	"strconv"
	"time"
)

const (
	lookbackDaysEnv          = "INSIGHTS_LOOKBACK_DAYS"
	recentDaysEnv            = "INSIGHTS_RECENT_DAYS"
	narrativeURLEnv          = "NARRATIVE_SERVICE_URL"
	narrativeTimeoutEnv      = "NARRATIVE_TIMEOUT_SECONDS"
	narrativeCallsPerHourEnv = "NARRATIVE_CALLS_PER_HOUR"

	defaultLookbackDays          = 30
	defaultRecentDays            = 7
	defaultNarrativeTimeout      = 5 * time.Second
	defaultNarrativeCallsPerHour = 10
)

// InsightsConfig tunes the analytics window and the external narrative
// collaborator. An empty NarrativeURL disables the external call
// entirely; insights then always use the rule-based fallback.
type InsightsConfig struct {
	LookbackDays          int
	RecentDays            int
	NarrativeURL          string
	NarrativeTimeout      time.Duration
	NarrativeCallsPerHour int
}

func LoadInsightsConfig() *InsightsConfig {
	lookbackDays := defaultLookbackDays
	if v := os.Getenv(lookbackDaysEnv); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			lookbackDays = parsed
		}
	}

	recentDays := defaultRecentDays
	if v := os.Getenv(recentDaysEnv); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			recentDays = parsed
		}
	}

	narrativeTimeout := defaultNarrativeTimeout
	if v := os.Getenv(narrativeTimeoutEnv); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			narrativeTimeout = time.Duration(parsed) * time.Second
		}
	}

	callsPerHour := defaultNarrativeCallsPerHour
	if v := os.Getenv(narrativeCallsPerHourEnv); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			callsPerHour = parsed
		}
	}

	return &InsightsConfig{
		LookbackDays:          lookbackDays,
		RecentDays:            recentDays,
		NarrativeURL:          os.Getenv(narrativeURLEnv),
		NarrativeTimeout:      narrativeTimeout,
		NarrativeCallsPerHour: callsPerHour,
	}
}
