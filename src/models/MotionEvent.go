package models

// MotionEvent is the compact record written for every motion episode.
// It is created on a "motion started" transition and finalized once on the
// matching "motion cleared" transition; no other component mutates it.
type MotionEvent struct {
	ID                 string  `json:"id" bson:"id"`
	CameraKey          string  `json:"camera_key" bson:"camera_key"`
	MotionLevel        float64 `json:"motion_level" bson:"motion_level"`
	DetectedAt         int64   `json:"detected_at" bson:"detected_at"`
	DetectedAtTime     string  `json:"detected_at_time,omitempty" bson:"detected_at_time,omitempty"`
	ClearedAt          *int64  `json:"cleared_at,omitempty" bson:"cleared_at,omitempty"`
	DurationMs         *int64  `json:"duration_ms,omitempty" bson:"duration_ms,omitempty"`
	RecordingTriggered bool    `json:"recording_triggered" bson:"recording_triggered"`
	NotificationSent   bool    `json:"notification_sent" bson:"notification_sent"`
}

// Open reports whether the event still misses its cleared transition.
func (m *MotionEvent) Open() bool {
	return m.ClearedAt == nil
}
