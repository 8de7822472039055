package models

type APIResponse struct {
	Data    interface{} `json:"data" bson:"data"`
	Message interface{} `json:"message" bson:"message"`
}

// Status is returned by the REST api and summarises the running detector.
type Status struct {
	CameraConnected bool    `json:"camera_connected"`
	MotionActive    bool    `json:"motion_active"`
	CurrentLevel    float64 `json:"current_level"`
	EventsToday     uint    `json:"events_today"`
	LastAlertAt     *int64  `json:"last_alert_at,omitempty"`
}
