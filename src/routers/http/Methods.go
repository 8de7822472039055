package http

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/camview/agent/src/components"
	"github.com/camview/agent/src/conditions"
	"github.com/camview/agent/src/config"
	"github.com/camview/agent/src/models"
)

// GetStatus returns a summary of the running detector: active episode,
// current motion level, daily counter and last alert.
func GetStatus(c *gin.Context, communication *models.Communication) {
	status := components.GetStatus()
	status.CameraConnected = communication.CameraConnected
	c.JSON(200, models.APIResponse{
		Data: status,
	})
}

// GetEvents lists the most recent motion events, newest first. The limit
// query parameter bounds the result, capped by the store itself.
func GetEvents(c *gin.Context) {
	limit := 0
	if value := c.Query("limit"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			limit = parsed
		}
	}
	events, err := components.ListEvents(limit)
	if err != nil {
		c.JSON(500, models.APIResponse{
			Message: "could not list events: " + err.Error(),
		})
		return
	}
	c.JSON(200, models.APIResponse{
		Data: events,
	})
}

// UpdateConfig validates and persists a new configuration, then signals
// the agent to restart so a fresh detection snapshot takes effect.
func UpdateConfig(c *gin.Context, configDirectory string, configuration *models.Configuration, communication *models.Communication) {
	var updated models.Config
	if err := c.BindJSON(&updated); err != nil {
		c.JSON(400, models.APIResponse{
			Message: "config not valid: " + err.Error(),
		})
		return
	}
	if err := conditions.Validate(config.Merge(config.Defaults(), updated).Detection); err != nil {
		c.JSON(400, models.APIResponse{
			Message: "detection config not valid: " + err.Error(),
		})
		return
	}
	if err := config.SaveConfig(configDirectory, updated, configuration, communication); err != nil {
		c.JSON(500, models.APIResponse{
			Message: "could not save config: " + err.Error(),
		})
		return
	}
	c.JSON(200, models.APIResponse{
		Data: "config saved, agent restarting",
	})
}

// PauseDetector suspends ticking, called when the dashboard tab goes
// hidden.
func PauseDetector(c *gin.Context) {
	components.PauseDetector()
	c.JSON(200, models.APIResponse{
		Data: "detector paused",
	})
}

// ResumeDetector resumes ticking on visibility return.
func ResumeDetector(c *gin.Context) {
	components.ResumeDetector()
	c.JSON(200, models.APIResponse{
		Data: "detector resumed",
	})
}
