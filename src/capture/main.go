package capture

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"time"

	"github.com/camview/agent/src/log"
)

// FrameSource hands out the most recent decoded frame of a camera. The
// detector only ever asks for the current frame at its own cadence, so an
// implementation does not need to buffer.
type FrameSource interface {
	IsReady() bool
	CurrentFrame() image.Image
}

// SnapshotSource polls a still-image endpoint (jpeg or png) exposed by the
// camera. A failed or undecodable fetch yields a nil frame, which the
// detector treats as "no observation this tick".
type SnapshotSource struct {
	url    string
	client *http.Client
}

func NewSnapshotSource(url string) *SnapshotSource {
	return &SnapshotSource{
		url: url,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (s *SnapshotSource) IsReady() bool {
	return s.url != ""
}

func (s *SnapshotSource) CurrentFrame() image.Image {
	resp, err := s.client.Get(s.url)
	if err != nil {
		log.Log.Debug("capture.main.CurrentFrame(): snapshot fetch failed: " + err.Error())
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}
	frame, _, err := image.Decode(resp.Body)
	if err != nil {
		log.Log.Debug("capture.main.CurrentFrame(): snapshot not decodable: " + err.Error())
		return nil
	}
	return frame
}

// StaticSource serves a fixed sequence of frames, exercising the pipeline
// without a camera.
type StaticSource struct {
	Frames []image.Image
	index  int
}

func (s *StaticSource) IsReady() bool {
	return len(s.Frames) > 0
}

// CurrentFrame returns the next frame of the sequence, repeating the last
// one once the sequence is exhausted.
func (s *StaticSource) CurrentFrame() image.Image {
	if len(s.Frames) == 0 {
		return nil
	}
	frame := s.Frames[s.index]
	if s.index < len(s.Frames)-1 {
		s.index++
	}
	return frame
}
