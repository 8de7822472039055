package models

// Config is the highlevel struct which contains all the configuration of
// a camview agent instance.
type Config struct {
	Type         string    `json:"type"`
	Key          string    `json:"key"`
	Name         string    `json:"name"`
	Timezone     string    `json:"timezone,omitempty" bson:"timezone,omitempty"`
	Capture      Capture   `json:"capture"`
	Detection    Detection `json:"detection"`
	Store        Store     `json:"store"`
	Offline      string    `json:"offline,omitempty" bson:"offline,omitempty"`
	HubKey       string    `json:"hubkey,omitempty" bson:"hubkey,omitempty"`
	MQTTURI      string    `json:"mqtturi,omitempty" bson:"mqtturi,omitempty"`
	MQTTUsername string    `json:"mqtt_username,omitempty" bson:"mqtt_username,omitempty"`
	MQTTPassword string    `json:"mqtt_password,omitempty" bson:"mqtt_password,omitempty"`
}

// Capture tells the agent where to fetch decoded frames from. The snapshot
// url points to a still-image endpoint exposed by the camera, polled by the
// detector at its own cadence.
type Capture struct {
	Name        string `json:"name"`
	SnapshotURL string `json:"snapshot_url"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

// Detection groups all knobs of the motion pipeline. A running detector
// holds an immutable snapshot of these values: changing one requires a
// restart of the agent.
type Detection struct {
	Enabled               string  `json:"enabled,omitempty"`
	Sensitivity           int     `json:"sensitivity"`
	Threshold             float64 `json:"threshold"`
	NoiseReduction        bool    `json:"noise_reduction"`
	ScheduleEnabled       bool    `json:"schedule_enabled"`
	StartHour             int     `json:"start_hour"`
	EndHour               int     `json:"end_hour"`
	CooldownPeriodSeconds int     `json:"cooldown_period_seconds"`
	IntervalMillis        int     `json:"interval_millis,omitempty"`

	// Accepted but not enforced by the gating logic.
	MinMotionDurationMs   int  `json:"min_motion_duration_ms,omitempty"`
	DetectionZonesEnabled bool `json:"detection_zones_enabled,omitempty"`
}

// Store selects where motion events are persisted: a local json file or
// a MongoDB collection (factory deployments).
type Store struct {
	Backend    string `json:"backend,omitempty"`
	Directory  string `json:"directory,omitempty"`
	URI        string `json:"uri,omitempty" bson:"uri,omitempty"`
	Database   string `json:"database,omitempty" bson:"database,omitempty"`
	Collection string `json:"collection,omitempty" bson:"collection,omitempty"`
}

// Configuration wraps the different configuration layers: the built-in
// defaults, the user supplied config.json and the merged result the agent
// actually runs with.
type Configuration struct {
	Name         string `json:"name"`
	Port         string `json:"port"`
	Config       Config `json:"config"`
	CustomConfig Config `json:"custom"`
	GlobalConfig Config `json:"global"`
}
