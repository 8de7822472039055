package config

import (
	"os"
	"testing"

	"github.com/camview/agent/src/models"
)

func TestMergeKeepsDefaultsForMissingFields(t *testing.T) {
	custom := models.Config{
		Key:  "cam1",
		Name: "front door",
	}
	merged := Merge(Defaults(), custom)

	if merged.Key != "cam1" {
		t.Fatalf("custom key should win, got %s", merged.Key)
	}
	if merged.Name != "front door" {
		t.Fatalf("custom name should win, got %s", merged.Name)
	}
	if merged.Store.Backend != "file" {
		t.Fatalf("default store backend should survive, got %s", merged.Store.Backend)
	}
	if merged.Detection.IntervalMillis != 1000 {
		t.Fatalf("default interval should survive, got %d", merged.Detection.IntervalMillis)
	}
}

func TestMergeCustomDetectionWins(t *testing.T) {
	custom := models.Config{
		Detection: models.Detection{
			Sensitivity:           40,
			Threshold:             12,
			ScheduleEnabled:       true,
			StartHour:             22,
			EndHour:               6,
			CooldownPeriodSeconds: 60,
			IntervalMillis:        500,
		},
	}
	merged := Merge(Defaults(), custom)

	if merged.Detection.Sensitivity != 40 {
		t.Fatalf("expected sensitivity 40, got %d", merged.Detection.Sensitivity)
	}
	if !merged.Detection.ScheduleEnabled {
		t.Fatal("schedule should be enabled")
	}
	if merged.Detection.StartHour != 22 || merged.Detection.EndHour != 6 {
		t.Fatalf("expected overnight window, got %d-%d", merged.Detection.StartHour, merged.Detection.EndHour)
	}
}

func TestOverrideWithEnvironmentVariables(t *testing.T) {
	os.Setenv("AGENT_KEY", "env-cam")
	os.Setenv("AGENT_DETECTION_SENSITIVITY", "33")
	os.Setenv("AGENT_DETECTION_THRESHOLD", "9.5")
	defer func() {
		os.Unsetenv("AGENT_KEY")
		os.Unsetenv("AGENT_DETECTION_SENSITIVITY")
		os.Unsetenv("AGENT_DETECTION_THRESHOLD")
	}()

	configuration := models.Configuration{Config: Defaults()}
	OverrideWithEnvironmentVariables(&configuration)

	if configuration.Config.Key != "env-cam" {
		t.Fatalf("expected key from environment, got %s", configuration.Config.Key)
	}
	if configuration.Config.Detection.Sensitivity != 33 {
		t.Fatalf("expected sensitivity 33, got %d", configuration.Config.Detection.Sensitivity)
	}
	if configuration.Config.Detection.Threshold != 9.5 {
		t.Fatalf("expected threshold 9.5, got %f", configuration.Config.Detection.Threshold)
	}
}
