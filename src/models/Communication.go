package models

import (
	"github.com/tevino/abool"
)

// The communication struct that is managing
// all the communication between the different goroutines.
type Communication struct {
	HandleBootstrap chan string
	HandleMotion    chan MotionEvent
	IsConfiguring   *abool.AtomicBool
	CameraConnected bool
}
