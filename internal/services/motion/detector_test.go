package motion

import (
	"image"
	"testing"
	"time"

	"birdsos/internal/config"
	"birdsos/internal/models"
)

func testSettings() config.MotionSettings {
	return config.MotionSettings{
		MotionSensitivity: 25,
		MinMotionArea:     500,
		PreRollDuration:   5 * time.Second,
		PostRollDuration:  10 * time.Second,
		FrameRate:         15,
	}
}

// uniformFrame builds a 640x480 BGR frame filled with a single intensity.
func uniformFrame(value byte) *models.Frame {
	const w, h = 640, 480
	data := make([]byte, w*h*3)
	for i := range data {
		data[i] = value
	}
	return &models.Frame{CameraID: "test", Data: data, Width: w, Height: h, Timestamp: time.Now()}
}

// paintRect sets a rectangular area of the frame to the given intensity.
func paintRect(f *models.Frame, r image.Rectangle, value byte) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			off := (y*f.Width + x) * 3
			f.Data[off] = value
			f.Data[off+1] = value
			f.Data[off+2] = value
		}
	}
}

func mustDetector(t *testing.T, settings config.MotionSettings) *Detector {
	t.Helper()
	d, err := NewDetector(settings)
	if err != nil {
		t.Fatalf("NewDetector failed: %v", err)
	}
	t.Cleanup(d.Close)
	return d
}

func TestDetector_FirstFrameNoMotion(t *testing.T) {
	d := mustDetector(t, testSettings())

	res, err := d.Detect(uniformFrame(30))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if res.Detected {
		t.Error("first frame must never report motion")
	}
}

func TestDetector_StaticSceneNoMotion(t *testing.T) {
	d := mustDetector(t, testSettings())

	frame := uniformFrame(30)
	if _, err := d.Detect(frame); err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	res, err := d.Detect(uniformFrame(30))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if res.Detected {
		t.Error("identical consecutive frames must not report motion")
	}
}

func TestDetector_LargeChangeDetected(t *testing.T) {
	d := mustDetector(t, testSettings())

	if _, err := d.Detect(uniformFrame(30)); err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	moved := uniformFrame(30)
	paintRect(moved, image.Rect(100, 100, 300, 300), 255)

	res, err := d.Detect(moved)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if !res.Detected {
		t.Fatal("200x200 intensity change must be reported as motion")
	}
	if len(res.Regions) == 0 {
		t.Fatal("expected at least one qualifying region")
	}
	// The reported region should cover the painted square.
	found := false
	for _, r := range res.Regions {
		if r.Rect.Overlaps(image.Rect(100, 100, 300, 300)) {
			found = true
		}
	}
	if !found {
		t.Errorf("no region overlaps the changed area, got %v", res.Regions)
	}
}

func TestDetector_SmallChangeIgnored(t *testing.T) {
	d := mustDetector(t, testSettings())

	if _, err := d.Detect(uniformFrame(30)); err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	moved := uniformFrame(30)
	paintRect(moved, image.Rect(316, 236, 324, 244), 255)

	res, err := d.Detect(moved)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if res.Detected {
		t.Errorf("8x8 change is below the area threshold, got regions %v", res.Regions)
	}
}

func TestDetector_SensitivityThreshold(t *testing.T) {
	lowDelta := uniformFrame(100)
	paintRect(lowDelta, image.Rect(100, 100, 300, 300), 150)

	sensitive := testSettings()
	sensitive.MotionSensitivity = 10
	d := mustDetector(t, sensitive)
	if _, err := d.Detect(uniformFrame(100)); err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	res, err := d.Detect(lowDelta)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if !res.Detected {
		t.Error("sensitivity 10 must detect a 50-intensity change")
	}

	tolerant := testSettings()
	tolerant.MotionSensitivity = 100
	d2 := mustDetector(t, tolerant)
	if _, err := d2.Detect(uniformFrame(100)); err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	res, err = d2.Detect(lowDelta)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if res.Detected {
		t.Error("sensitivity 100 must ignore a 50-intensity change")
	}
}

func TestDetector_BaselineSlidesForward(t *testing.T) {
	d := mustDetector(t, testSettings())

	if _, err := d.Detect(uniformFrame(30)); err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	moved := uniformFrame(30)
	paintRect(moved, image.Rect(100, 100, 300, 300), 255)
	res, err := d.Detect(moved)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if !res.Detected {
		t.Fatal("expected motion on changed frame")
	}

	// The changed frame is now the baseline, so repeating it is static.
	res, err = d.Detect(moved)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if res.Detected {
		t.Error("repeating the previous frame must not report motion")
	}
}

func TestDetector_Reset(t *testing.T) {
	d := mustDetector(t, testSettings())

	if _, err := d.Detect(uniformFrame(30)); err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	d.Reset()

	// After reset the next frame is a fresh baseline even though it
	// differs wildly from the pre-reset one.
	res, err := d.Detect(uniformFrame(255))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if res.Detected {
		t.Error("first frame after reset must not report motion")
	}
}

func TestDetector_FrameContractViolations(t *testing.T) {
	d := mustDetector(t, testSettings())

	short := uniformFrame(30)
	short.Data = short.Data[:100]
	if _, err := d.Detect(short); err == nil {
		t.Error("expected error for truncated frame data")
	}

	if _, err := d.Detect(uniformFrame(30)); err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	resized := &models.Frame{
		CameraID:  "test",
		Data:      make([]byte, 320*240*3),
		Width:     320,
		Height:    240,
		Timestamp: time.Now(),
	}
	if _, err := d.Detect(resized); err == nil {
		t.Error("expected error when frame dimensions change")
	}
}

func TestFilterRegions_Boundary(t *testing.T) {
	regions := []Region{
		{Rect: image.Rect(0, 0, 10, 50), Area: 500},
		{Rect: image.Rect(20, 0, 30, 50), Area: 499},
		{Rect: image.Rect(40, 0, 50, 60), Area: 600},
	}

	kept := filterRegions(regions, 500)
	if len(kept) != 2 {
		t.Fatalf("expected 2 qualifying regions, got %d", len(kept))
	}
	if kept[0].Area != 500 {
		t.Errorf("a region of exactly the minimum area must qualify, got %v", kept[0])
	}
	for _, r := range kept {
		if r.Area < 500 {
			t.Errorf("region below the minimum area slipped through: %v", r)
		}
	}
}

func TestFilterRegions_Empty(t *testing.T) {
	if got := filterRegions(nil, 500); len(got) != 0 {
		t.Errorf("expected no regions, got %v", got)
	}
	small := []Region{{Rect: image.Rect(0, 0, 2, 2), Area: 4}}
	if got := filterRegions(small, 500); len(got) != 0 {
		t.Errorf("expected no qualifying regions, got %v", got)
	}
}
