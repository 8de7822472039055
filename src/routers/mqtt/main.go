package mqtt

import (
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/camview/agent/src/log"
	"github.com/camview/agent/src/models"
)

// ConfigureMQTT sets up the client used to push motion events towards the
// hub. Returns nil when no broker is configured, which disables publishing
// without disturbing the rest of the agent.
func ConfigureMQTT(configuration *models.Configuration) mqtt.Client {
	config := configuration.Config

	mqttURL := config.MQTTURI
	if mqttURL == "" {
		log.Log.Info("routers.mqtt.ConfigureMQTT(): no broker configured, skipping mqtt")
		return nil
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(mqttURL)
	log.Log.Info("routers.mqtt.ConfigureMQTT(): set broker uri " + mqttURL)

	// The broker can have username/password credentials to protect it
	// from the outside.
	if config.MQTTUsername != "" || config.MQTTPassword != "" {
		opts.SetUsername(config.MQTTUsername)
		opts.SetPassword(config.MQTTPassword)
		log.Log.Info("routers.mqtt.ConfigureMQTT(): set username " + config.MQTTUsername)
	}

	opts.SetCleanSession(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(30 * time.Second)

	// A random suffix avoids client id conflicts when multiple agents
	// share the same camera key.
	mqttClientID := config.Key + strconv.Itoa(rand.Intn(100))
	opts.SetClientID(mqttClientID)

	opts.OnConnect = func(c mqtt.Client) {
		log.Log.Info("routers.mqtt.ConfigureMQTT(): " + mqttClientID + " connected to " + mqttURL)
	}

	mqc := mqtt.NewClient(opts)
	if token := mqc.Connect(); token.WaitTimeout(3 * time.Second) {
		if token.Error() != nil {
			log.Log.Error("routers.mqtt.ConfigureMQTT(): unable to establish mqtt broker connection, error was: " + token.Error().Error())
		}
	}
	return mqc
}

// PublishMotion pushes a single motion event to the hub topic of this
// device. Failures are logged only; event delivery is best effort.
func PublishMotion(mqttClient mqtt.Client, configuration *models.Configuration, event models.MotionEvent) {
	if mqttClient == nil || !mqttClient.IsConnected() {
		return
	}
	config := configuration.Config
	payload, err := json.Marshal(event)
	if err != nil {
		log.Log.Error("routers.mqtt.PublishMotion(): could not encode event: " + err.Error())
		return
	}
	topic := "camview/" + config.HubKey + "/device/" + config.Key + "/motion"
	mqttClient.Publish(topic, 2, false, payload)
}

// DisconnectMQTT tears the client down before a reconfigure.
func DisconnectMQTT(mqttClient mqtt.Client) {
	if mqttClient != nil {
		mqttClient.Disconnect(1000)
	}
}
