package camera

import (
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"birdsos/internal/config"
	"birdsos/internal/models"
)

// maxConsecutiveErrors is how many empty reads in a row we tolerate before
// declaring the device gone.
const maxConsecutiveErrors = 30

// DeviceSource captures frames from a V4L2 device through gocv.
type DeviceSource struct {
	cameraID string
	device   string
	width    int
	height   int
	fps      int

	capture           *gocv.VideoCapture
	mat               gocv.Mat
	seq               int64
	consecutiveErrors int
}

func NewDeviceSource(cfg *config.Config) *DeviceSource {
	return &DeviceSource{
		cameraID: cfg.CameraID,
		device:   cfg.CameraDevice,
		width:    cfg.FrameWidth,
		height:   cfg.FrameHeight,
		fps:      cfg.FrameRate,
	}
}

func (s *DeviceSource) ID() string { return s.cameraID }

func (s *DeviceSource) Open() error {
	capture, err := gocv.OpenVideoCapture(s.device)
	if err != nil {
		return fmt.Errorf("%w: failed to open %s: %v", ErrSourceUnavailable, s.device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return fmt.Errorf("%w: %s did not open", ErrSourceUnavailable, s.device)
	}

	capture.Set(gocv.VideoCaptureFrameWidth, float64(s.width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(s.height))
	capture.Set(gocv.VideoCaptureFPS, float64(s.fps))

	s.capture = capture
	s.mat = gocv.NewMat()
	s.consecutiveErrors = 0
	return nil
}

// Read blocks on the device for the next frame. An empty read is returned
// as a transient error; a run of them is reported as ErrSourceUnavailable.
func (s *DeviceSource) Read() (*models.Frame, error) {
	if s.capture == nil {
		return nil, fmt.Errorf("%w: device not opened", ErrSourceUnavailable)
	}

	if ok := s.capture.Read(&s.mat); !ok || s.mat.Empty() {
		s.consecutiveErrors++
		if s.consecutiveErrors >= maxConsecutiveErrors {
			return nil, fmt.Errorf("%w: %d consecutive empty reads from %s",
				ErrSourceUnavailable, s.consecutiveErrors, s.device)
		}
		return nil, fmt.Errorf("empty frame from %s", s.device)
	}
	s.consecutiveErrors = 0

	s.seq++
	return &models.Frame{
		CameraID:  s.cameraID,
		Data:      s.mat.ToBytes(),
		Width:     s.mat.Cols(),
		Height:    s.mat.Rows(),
		Timestamp: time.Now(),
		Seq:       s.seq,
	}, nil
}

func (s *DeviceSource) Close() error {
	if s.capture == nil {
		return nil
	}
	s.mat.Close()
	err := s.capture.Close()
	s.capture = nil
	return err
}
