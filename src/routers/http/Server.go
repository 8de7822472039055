package http

import (
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/camview/agent/src/log"
	"github.com/camview/agent/src/models"
)

// StartServer fires up the REST api the dashboard talks to. This blocks,
// so it is the last thing main calls.
func StartServer(configDirectory string, configuration *models.Configuration, communication *models.Communication) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	pprof.Register(r)
	r.Use(CORS())

	AddRoutes(r, configDirectory, configuration, communication)

	err := r.Run(":" + configuration.Port)
	if err != nil {
		log.Log.Fatal("routers.http.StartServer(): " + err.Error())
	}
}
