package camera

import (
	"fmt"
	"math"
	"time"

	"birdsos/internal/config"
	"birdsos/internal/models"
)

// MockSource synthesizes a deterministic test pattern so the full pipeline
// runs on machines without a capture device: a faint grid, a center
// crosshair and a small dot orbiting the center. The dot is sized below
// the default motion area threshold, so an untouched mock feed stays idle.
type MockSource struct {
	cameraID string
	width    int
	height   int
	interval time.Duration

	pattern []byte
	opened  bool
	seq     int64
}

func NewMockSource(cfg *config.Config) *MockSource {
	fps := cfg.FrameRate
	if fps <= 0 {
		fps = 15
	}
	return &MockSource{
		cameraID: cfg.CameraID,
		width:    cfg.FrameWidth,
		height:   cfg.FrameHeight,
		interval: time.Second / time.Duration(fps),
	}
}

func (s *MockSource) ID() string { return s.cameraID }

func (s *MockSource) Open() error {
	if s.width <= 0 || s.height <= 0 {
		return fmt.Errorf("%w: invalid mock resolution %dx%d", ErrSourceUnavailable, s.width, s.height)
	}
	s.pattern = renderPattern(s.width, s.height)
	s.opened = true
	s.seq = 0
	return nil
}

// Read paces itself to the configured frame rate, like a blocking device
// read would.
func (s *MockSource) Read() (*models.Frame, error) {
	if !s.opened {
		return nil, fmt.Errorf("%w: mock source not opened", ErrSourceUnavailable)
	}
	if s.interval > 0 {
		time.Sleep(s.interval)
	}

	data := make([]byte, len(s.pattern))
	copy(data, s.pattern)
	s.drawOrbitingDot(data, s.seq)

	s.seq++
	return &models.Frame{
		CameraID:  s.cameraID,
		Data:      data,
		Width:     s.width,
		Height:    s.height,
		Timestamp: time.Now(),
		Seq:       s.seq,
	}, nil
}

func (s *MockSource) Close() error {
	s.opened = false
	return nil
}

// drawOrbitingDot paints the simulated activity: a 5px dot circling the
// frame center at radius 100, advancing one radian per simulated second.
func (s *MockSource) drawOrbitingDot(data []byte, seq int64) {
	t := float64(seq) * s.interval.Seconds()
	cx := float64(s.width)/2 + math.Sin(t)*100
	cy := float64(s.height)/2 + math.Cos(t)*100
	fillCircle(data, s.width, int(cx), int(cy), 5, 255, 0, 0)
}

func renderPattern(width, height int) []byte {
	data := make([]byte, width*height*3)

	for y := 0; y < height; y += 50 {
		for x := 0; x < width; x++ {
			setPixel(data, width, x, y, 50, 50, 50)
		}
	}
	for x := 0; x < width; x += 50 {
		for y := 0; y < height; y++ {
			setPixel(data, width, x, y, 50, 50, 50)
		}
	}

	cx, cy := width/2, height/2
	for x := cx - 20; x <= cx+20; x++ {
		setPixel(data, width, x, cy, 0, 255, 0)
		setPixel(data, width, x, cy+1, 0, 255, 0)
	}
	for y := cy - 20; y <= cy+20; y++ {
		setPixel(data, width, cx, y, 0, 255, 0)
		setPixel(data, width, cx+1, y, 0, 255, 0)
	}
	return data
}

func setPixel(data []byte, width, x, y int, b, g, r byte) {
	if x < 0 || x >= width || y < 0 {
		return
	}
	off := (y*width + x) * 3
	if off+2 >= len(data) {
		return
	}
	data[off] = b
	data[off+1] = g
	data[off+2] = r
}

func fillCircle(data []byte, width, cx, cy, radius int, b, g, r byte) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > radius*radius {
				continue
			}
			setPixel(data, width, cx+dx, cy+dy, b, g, r)
		}
	}
}
