package main

import (
	"fmt"
	"os"
	"time"

	"github.com/tevino/abool"

	"github.com/camview/agent/src/components"
	"github.com/camview/agent/src/config"
	"github.com/camview/agent/src/log"
	"github.com/camview/agent/src/models"
	routersHttp "github.com/camview/agent/src/routers/http"
)

func main() {

	const VERSION = "1.0"
	if len(os.Args) < 2 {
		fmt.Println("Usage: agent [version|run <name> <port>]")
		return
	}
	action := os.Args[1]

	switch action {
	case "version":
		fmt.Println("You are currently running Camview Agent " + VERSION)

	case "run":
		{
			if len(os.Args) < 4 {
				fmt.Println("Usage: agent run <name> <port>")
				return
			}
			name := os.Args[2]
			port := os.Args[3]
			configDirectory := "."

			// Read the config on start, and pass it to the other functions and
			// features. Please note that this might be changed when saving or
			// updating the configuration through the REST api.
			configuration := models.Configuration{
				Name: name,
				Port: port,
			}
			config.OpenConfig(configDirectory, &configuration)
			config.OverrideWithEnvironmentVariables(&configuration)

			timezone, err := time.LoadLocation(configuration.Config.Timezone)
			if err != nil {
				timezone = time.Local
			}
			log.Log.Init("info", configDirectory, timezone)

			communication := models.Communication{
				HandleBootstrap: make(chan string, 1),
				IsConfiguring:   abool.New(),
			}

			// Bootstrapping the agent: detector, event store, mqtt, etc.
			go components.Bootstrap(configDirectory, &configuration, &communication)

			// Start the REST api, blocks until the process goes down.
			routersHttp.StartServer(configDirectory, &configuration, &communication)
		}
	default:
		fmt.Println("Sorry I don't understand :(")
	}
}
