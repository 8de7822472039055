package config

import (
	"encoding/json"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/InVisionApp/conjungo"
	"github.com/camview/agent/src/log"
	"github.com/camview/agent/src/models"
)

// Defaults returns the built-in configuration the user config is merged
// over. The detection values mirror what the dashboard ships with.
func Defaults() models.Config {
	return models.Config{
		Type:     "config",
		Name:     "agent",
		Timezone: "Local",
		Detection: models.Detection{
			Enabled:               "true",
			Sensitivity:           70,
			Threshold:             8,
			NoiseReduction:        true,
			ScheduleEnabled:       false,
			StartHour:             0,
			EndHour:               23,
			CooldownPeriodSeconds: 30,
			IntervalMillis:        1000,
		},
		Store: models.Store{
			Backend:   "file",
			Directory: ".",
		},
	}
}

// OpenConfig reads the user configuration from disk and merges it over the
// built-in defaults. Like the agent this retries until a valid file shows
// up, as the dashboard might still be writing the initial config.
func OpenConfig(configDirectory string, configuration *models.Configuration) {
	for {
		jsonFile, err := os.Open(configDirectory + "/data/config/config.json")
		if err != nil {
			log.Log.Error("config.main.OpenConfig(): config file is not found " + configDirectory + "/data/config/config.json, trying again in 5s.")
			time.Sleep(5 * time.Second)
			continue
		}
		log.Log.Info("config.main.OpenConfig(): successfully opened config.json from " + configuration.Name)
		err = json.NewDecoder(jsonFile).Decode(&configuration.CustomConfig)
		jsonFile.Close()
		if err != nil {
			log.Log.Error("config.main.OpenConfig(): JSON file not valid: " + err.Error())
			time.Sleep(5 * time.Second)
			continue
		}
		break
	}

	configuration.GlobalConfig = Defaults()
	configuration.Config = Merge(configuration.GlobalConfig, configuration.CustomConfig)
}

// Merge layers a custom config over a base config. Empty strings never
// overwrite a base value, which keeps the defaults in place for fields the
// user left out.
func Merge(base models.Config, custom models.Config) models.Config {
	opts := conjungo.NewOptions()
	opts.SetTypeMergeFunc(
		reflect.TypeOf(""),
		func(t, s reflect.Value, o *conjungo.Options) (reflect.Value, error) {
			targetStr, _ := t.Interface().(string)
			sourceStr, _ := s.Interface().(string)
			finalStr := targetStr
			if sourceStr != "" {
				finalStr = sourceStr
			}
			return reflect.ValueOf(finalStr), nil
		},
	)
	opts.SetTypeMergeFunc(
		reflect.TypeOf(0),
		func(t, s reflect.Value, o *conjungo.Options) (reflect.Value, error) {
			targetInt, _ := t.Interface().(int)
			sourceInt, _ := s.Interface().(int)
			finalInt := targetInt
			if sourceInt != 0 {
				finalInt = sourceInt
			}
			return reflect.ValueOf(finalInt), nil
		},
	)
	opts.SetTypeMergeFunc(
		reflect.TypeOf(float64(0)),
		func(t, s reflect.Value, o *conjungo.Options) (reflect.Value, error) {
			targetFloat, _ := t.Interface().(float64)
			sourceFloat, _ := s.Interface().(float64)
			finalFloat := targetFloat
			if sourceFloat != 0 {
				finalFloat = sourceFloat
			}
			return reflect.ValueOf(finalFloat), nil
		},
	)

	merged := models.Config{}
	conjungo.Merge(&merged, base, opts)
	conjungo.Merge(&merged, custom, opts)
	return merged
}

// SaveConfig persists the custom configuration and signals the agent to
// restart, which is how a new detection snapshot becomes effective.
func SaveConfig(configDirectory string, config models.Config, configuration *models.Configuration, communication *models.Communication) error {
	if !communication.IsConfiguring.IsSet() {
		communication.IsConfiguring.Set()
		defer communication.IsConfiguring.UnSet()

		res, err := json.MarshalIndent(config, "", "  ")
		if err != nil {
			return err
		}
		err = os.WriteFile(configDirectory+"/data/config/config.json", res, 0644)
		if err != nil {
			return err
		}

		configuration.CustomConfig = config
		configuration.Config = Merge(Defaults(), config)

		select {
		case communication.HandleBootstrap <- "restart":
		default:
		}
	}
	return nil
}

// This function will override the configuration with environment variables.
func OverrideWithEnvironmentVariables(configuration *models.Configuration) {
	for _, env := range os.Environ() {
		if !strings.Contains(env, "AGENT_") {
			continue
		}
		key := strings.Split(env, "=")[0]
		value := os.Getenv(key)
		switch key {
		case "AGENT_KEY":
			configuration.Config.Key = value
		case "AGENT_NAME":
			configuration.Config.Name = value
		case "AGENT_TIMEZONE":
			configuration.Config.Timezone = value
		case "AGENT_CAPTURE_SNAPSHOT_URL":
			configuration.Config.Capture.SnapshotURL = value
		case "AGENT_DETECTION_SENSITIVITY":
			if v, err := strconv.Atoi(value); err == nil {
				configuration.Config.Detection.Sensitivity = v
			}
		case "AGENT_DETECTION_THRESHOLD":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				configuration.Config.Detection.Threshold = v
			}
		case "AGENT_DETECTION_COOLDOWN":
			if v, err := strconv.Atoi(value); err == nil {
				configuration.Config.Detection.CooldownPeriodSeconds = v
			}
		case "AGENT_STORE_BACKEND":
			configuration.Config.Store.Backend = value
		case "AGENT_STORE_URI":
			configuration.Config.Store.URI = value
		case "AGENT_MQTT_URI":
			configuration.Config.MQTTURI = value
		case "AGENT_MQTT_USERNAME":
			configuration.Config.MQTTUsername = value
		case "AGENT_MQTT_PASSWORD":
			configuration.Config.MQTTPassword = value
		case "AGENT_HUB_KEY":
			configuration.Config.HubKey = value
		}
	}
}
