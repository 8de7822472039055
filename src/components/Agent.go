package components

import (
	"context"
	"strconv"
	"sync"
	"time"

	mqttClient "github.com/eclipse/paho.mqtt.golang"

	"github.com/camview/agent/src/capture"
	"github.com/camview/agent/src/clock"
	configService "github.com/camview/agent/src/config"
	"github.com/camview/agent/src/detection"
	"github.com/camview/agent/src/events"
	"github.com/camview/agent/src/log"
	"github.com/camview/agent/src/models"
	routersMqtt "github.com/camview/agent/src/routers/mqtt"
	"github.com/camview/agent/src/routers/websocket"
)

var agentMu sync.Mutex
var currentDetector *detection.Detector
var currentRecorder *events.Recorder
var currentMQTT mqttClient.Client

func setMQTTClient(mqc mqttClient.Client) {
	agentMu.Lock()
	defer agentMu.Unlock()
	currentMQTT = mqc
}

func getMQTTClient() mqttClient.Client {
	agentMu.Lock()
	defer agentMu.Unlock()
	return currentMQTT
}

func setCurrent(detector *detection.Detector, recorder *events.Recorder) {
	agentMu.Lock()
	defer agentMu.Unlock()
	currentDetector = detector
	currentRecorder = recorder
}

// GetStatus exposes the running detector to the REST api.
func GetStatus() models.Status {
	agentMu.Lock()
	defer agentMu.Unlock()
	if currentDetector == nil {
		return models.Status{}
	}
	return currentDetector.Snapshot()
}

// ListEvents exposes the bounded event listing to the REST api.
func ListEvents(limit int) ([]models.MotionEvent, error) {
	agentMu.Lock()
	recorder := currentRecorder
	agentMu.Unlock()
	if recorder == nil {
		return []models.MotionEvent{}, nil
	}
	return recorder.ListRecent(limit)
}

func PauseDetector() {
	agentMu.Lock()
	defer agentMu.Unlock()
	if currentDetector != nil {
		currentDetector.Pause()
	}
}

func ResumeDetector() {
	agentMu.Lock()
	defer agentMu.Unlock()
	if currentDetector != nil {
		currentDetector.Resume()
	}
}

// Bootstrap runs the agent in a restart loop. Saving a new configuration
// or hitting /api/restart pushes "restart" on the bootstrap channel, which
// tears the detector down and brings it back up with a fresh snapshot.
func Bootstrap(configDirectory string, configuration *models.Configuration, communication *models.Communication) {
	log.Log.Debug("components.Agent.Bootstrap(): started")

	communication.HandleMotion = make(chan models.MotionEvent, 10)

	// Before starting the agent, we have a control goroutine, that might
	// do several checks to see if the agent is still operational.
	go ControlAgent(communication)

	setMQTTClient(routersMqtt.ConfigureMQTT(configuration))
	go HandleMotionEvents(configuration, communication)

	for {
		// This will block until receiving a signal to be restarted or stopped.
		status := RunAgent(configDirectory, configuration, communication)

		if status == "stop" {
			break
		}

		// We will re open the configuration, might have changed.
		configService.OpenConfig(configDirectory, configuration)
		configService.OverrideWithEnvironmentVariables(configuration)

		// Reset the MQTT client, might have new broker details.
		routersMqtt.DisconnectMQTT(getMQTTClient())
		setMQTTClient(routersMqtt.ConfigureMQTT(configuration))
	}
	log.Log.Debug("components.Agent.Bootstrap(): finished")
}

// RunAgent wires one detector run: store, recorder, frame source and the
// detection loop. It blocks until a bootstrap signal arrives, then cleans
// everything up and reports the signal to the restart loop.
func RunAgent(configDirectory string, configuration *models.Configuration, communication *models.Communication) string {
	log.Log.Debug("components.Agent.RunAgent(): bootstrapping agent")
	config := configuration.Config

	clk := clock.NewSystem(config.Timezone)
	store := buildStore(configDirectory, config)
	recorder := events.NewRecorder(store, clk, config.Key, true, config.MQTTURI != "")

	rolloverCtx, cancelRollover := context.WithCancel(context.Background())
	recorder.StartRollover(rolloverCtx)

	detector := detection.New(config.Detection, clk, recorder, detection.Callbacks{
		OnMotionDetected: func(level float64) {
			log.Log.Info("components.Agent.RunAgent(): motion detected, level " + strconv.FormatFloat(level, 'f', 2, 64))
		},
		OnMotionCleared: func() {
			log.Log.Info("components.Agent.RunAgent(): motion cleared")
		},
	}, communication.HandleMotion)

	source := capture.NewSnapshotSource(config.Capture.SnapshotURL)
	if err := detector.Start(source); err != nil {
		log.Log.Error("components.Agent.RunAgent(): could not start detector: " + err.Error())
		communication.CameraConnected = false
	} else {
		communication.CameraConnected = true
	}
	setCurrent(detector, recorder)

	// !!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!
	// This will go into a blocking state, once this channel is triggered
	// the agent will cleanup and restart.

	status := <-communication.HandleBootstrap

	communication.CameraConnected = false
	setCurrent(nil, nil)
	detector.Stop()
	cancelRollover()

	log.Log.Info("components.Agent.RunAgent(): agent stopped with status " + status)
	return status
}

// HandleMotionEvents consumes the motion channel fed by the detector and
// fans the events out: mqtt towards the hub, websocket towards connected
// dashboards.
func HandleMotionEvents(configuration *models.Configuration, communication *models.Communication) {
	for event := range communication.HandleMotion {
		if configuration.Config.Offline != "true" {
			routersMqtt.PublishMotion(getMQTTClient(), configuration, event)
		}
		websocket.BroadcastMotion(event)
	}
}

// ControlAgent watches the tick counter of the running detector; a stalled
// pipeline gets the whole agent restarted.
func ControlAgent(communication *models.Communication) {
	log.Log.Debug("components.Agent.ControlAgent(): started")
	go func() {
		var previousTicks int64 = 0
		var occurence = 0
		for {
			if communication.CameraConnected {
				agentMu.Lock()
				detector := currentDetector
				agentMu.Unlock()
				if detector != nil && detector.IsRunning() && !detector.IsPaused() {
					ticks := detector.Ticks()
					if ticks == previousTicks {
						if !communication.IsConfiguring.IsSet() {
							occurence = occurence + 1
						}
					} else {
						occurence = 0
					}
					// After 15 seconds without a tick this is thrown..
					if occurence == 3 {
						log.Log.Info("components.Agent.ControlAgent(): restarting agent, pipeline stalled")
						communication.HandleBootstrap <- "restart"
						time.Sleep(2 * time.Second)
						occurence = 0
					}
					previousTicks = ticks
				}
			}
			time.Sleep(5 * time.Second)
		}
	}()
	log.Log.Debug("components.Agent.ControlAgent(): finished")
}

func buildStore(configDirectory string, config models.Config) events.Store {
	if config.Store.Backend == "mongo" {
		store, err := events.NewMongoStore(config.Store)
		if err == nil {
			log.Log.Info("components.Agent.buildStore(): using mongodb event store")
			return store
		}
		log.Log.Error("components.Agent.buildStore(): mongodb not reachable, falling back to file store: " + err.Error())
	}
	directory := configDirectory
	if config.Store.Directory != "" {
		directory = config.Store.Directory
	}
	store, err := events.NewFileStore(directory)
	if err != nil {
		log.Log.Error("components.Agent.buildStore(): could not create file store: " + err.Error())
		return events.NewNullStore()
	}
	return store
}
