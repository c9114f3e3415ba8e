package motion

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"birdsos/internal/config"
	"birdsos/internal/models"
)

// blurKernel is the smoothing kernel applied before frame differencing to
// suppress sensor noise.
var blurKernel = image.Pt(21, 21)

// Region is a contiguous changed area between consecutive frames.
type Region struct {
	Rect image.Rectangle `json:"rect"`
	Area float64         `json:"area"`
}

// Result carries one frame's detection outcome. Regions holds only the
// qualifying regions and is a debug/overlay aid; Detected is the signal
// the recorder acts on.
type Result struct {
	Detected bool
	Regions  []Region
}

// Detector compares consecutive frames and reports qualifying motion.
// It keeps exactly one frame of history (the previous blurred grayscale
// frame) as instance state. The pipeline worker is its only caller; the
// detector is not safe for concurrent use.
type Detector struct {
	sensitivity float32
	minArea     float64

	width   int
	height  int
	hasPrev bool

	prev   gocv.Mat
	gray   gocv.Mat
	delta  gocv.Mat
	kernel gocv.Mat
}

// NewDetector creates a detector with validated settings.
func NewDetector(settings config.MotionSettings) (*Detector, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid motion settings: %w", err)
	}

	return &Detector{
		sensitivity: float32(settings.MotionSensitivity),
		minArea:     float64(settings.MinMotionArea),
		prev:        gocv.NewMat(),
		gray:        gocv.NewMat(),
		delta:       gocv.NewMat(),
		kernel:      gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3)),
	}, nil
}

// Detect processes one frame and reports whether motion occurred relative
// to the previous frame. The first frame becomes the stored baseline and
// never reports motion. After every call the stored previous frame is
// replaced with the current one (a sliding one-frame window).
func (d *Detector) Detect(frame *models.Frame) (Result, error) {
	if !frame.Valid() {
		return Result{}, fmt.Errorf("malformed frame: %dx%d with %d bytes", frame.Width, frame.Height, len(frame.Data))
	}
	if d.hasPrev && (frame.Width != d.width || frame.Height != d.height) {
		return Result{}, fmt.Errorf("frame dimensions changed from %dx%d to %dx%d", d.width, d.height, frame.Width, frame.Height)
	}

	mat, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC3, frame.Data)
	if err != nil {
		return Result{}, fmt.Errorf("failed to wrap frame data: %w", err)
	}
	defer mat.Close()

	gocv.CvtColor(mat, &d.gray, gocv.ColorBGRToGray)
	gocv.GaussianBlur(d.gray, &d.gray, blurKernel, 0, 0, gocv.BorderDefault)

	if !d.hasPrev {
		d.gray.CopyTo(&d.prev)
		d.hasPrev = true
		d.width = frame.Width
		d.height = frame.Height
		return Result{}, nil
	}

	gocv.AbsDiff(d.prev, d.gray, &d.delta)
	gocv.Threshold(d.delta, &d.delta, d.sensitivity, 255, gocv.ThresholdBinary)
	gocv.Dilate(d.delta, &d.delta, d.kernel)
	gocv.Dilate(d.delta, &d.delta, d.kernel)

	contours := gocv.FindContours(d.delta, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	regions := make([]Region, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		regions = append(regions, Region{
			Rect: gocv.BoundingRect(contour),
			Area: gocv.ContourArea(contour),
		})
	}
	contours.Close()

	d.gray.CopyTo(&d.prev)

	qualifying := filterRegions(regions, d.minArea)
	return Result{Detected: len(qualifying) > 0, Regions: qualifying}, nil
}

// UpdateSettings applies new thresholds. The stored previous frame is kept:
// a sensitivity change does not invalidate history.
func (d *Detector) UpdateSettings(settings config.MotionSettings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid motion settings: %w", err)
	}
	d.sensitivity = float32(settings.MotionSensitivity)
	d.minArea = float64(settings.MinMotionArea)
	return nil
}

// Reset drops the stored baseline, as on camera restart. The next frame
// becomes the new baseline and reports no motion.
func (d *Detector) Reset() {
	d.hasPrev = false
	d.width = 0
	d.height = 0
}

// Close releases the detector's native buffers.
func (d *Detector) Close() {
	d.prev.Close()
	d.gray.Close()
	d.delta.Close()
	d.kernel.Close()
}

// filterRegions keeps the regions whose area meets the minimum. A region
// of exactly minArea qualifies; anything smaller does not.
func filterRegions(regions []Region, minArea float64) []Region {
	out := regions[:0]
	for _, r := range regions {
		if r.Area >= minArea {
			out = append(out, r)
		}
	}
	return out
}
