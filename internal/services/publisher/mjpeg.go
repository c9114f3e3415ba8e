package publisher

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"birdsos/internal/config"
	"birdsos/internal/models"
	"birdsos/internal/services/motion"
)

// keepaliveInterval re-sends the latest frame to idle streams so proxies
// do not drop the connection while the scene is static.
const keepaliveInterval = 2 * time.Second

var overlayColor = color.RGBA{G: 255, A: 255}

// Publisher converts pipeline frames to JPEG and serves them as MJPEG
// multipart streams and single snapshots. It keeps only the most recent
// frame per camera; viewers that fall behind skip ahead.
type Publisher struct {
	cfg         *config.Config
	jpegMutex   sync.RWMutex
	latestJPEG  map[string][]byte
	frameNotify map[string]chan struct{}
	notifyMutex sync.RWMutex
}

func NewPublisher(cfg *config.Config) *Publisher {
	return &Publisher{
		cfg:         cfg,
		latestJPEG:  make(map[string][]byte),
		frameNotify: make(map[string]chan struct{}),
	}
}

// PublishFrame encodes the frame and wakes waiting streamers. When the
// overlay flag is set, qualifying motion regions are drawn on the streamed
// copy; the recorded file never carries overlays.
func (p *Publisher) PublishFrame(frame *models.Frame, regions []motion.Region) error {
	if err := p.updateLatestJPEG(frame, regions); err != nil {
		return err
	}

	p.notifyStreamers(frame.CameraID)
	return nil
}

// Snapshot returns the most recent JPEG for the camera.
func (p *Publisher) Snapshot(cameraID string) ([]byte, bool) {
	p.jpegMutex.RLock()
	defer p.jpegMutex.RUnlock()

	jpeg, ok := p.latestJPEG[cameraID]
	if !ok || len(jpeg) == 0 {
		return nil, false
	}
	out := make([]byte, len(jpeg))
	copy(out, jpeg)
	return out, true
}

func (p *Publisher) updateLatestJPEG(frame *models.Frame, regions []motion.Region) error {
	mat, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC3, frame.Data)
	if err != nil {
		return fmt.Errorf("failed to create Mat from frame data: %w", err)
	}
	defer mat.Close()

	if p.cfg.MotionOverlay && len(regions) > 0 {
		for _, region := range regions {
			gocv.Rectangle(&mat, region.Rect, overlayColor, 2)
		}
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, mat, []int{gocv.IMWriteJpegQuality, p.jpegQuality()})
	if err != nil {
		return fmt.Errorf("failed to encode JPEG: %w", err)
	}

	b := buf.GetBytes()
	jpegCopy := make([]byte, len(b))
	copy(jpegCopy, b)
	buf.Close()

	p.jpegMutex.Lock()
	p.latestJPEG[frame.CameraID] = jpegCopy
	p.jpegMutex.Unlock()
	return nil
}

func (p *Publisher) jpegQuality() int {
	if p.cfg.JPEGQuality > 0 && p.cfg.JPEGQuality <= 100 {
		return p.cfg.JPEGQuality
	}
	return 90
}

// notifyStreamers wakes the camera's streamer without blocking. The send
// happens under the read lock so a concurrent cleanup cannot close the
// channel mid-send.
func (p *Publisher) notifyStreamers(cameraID string) {
	p.notifyMutex.RLock()
	defer p.notifyMutex.RUnlock()

	if notify, exists := p.frameNotify[cameraID]; exists {
		select {
		case notify <- struct{}{}:
		default:
		}
	}
}

func (p *Publisher) getOrCreateNotifyChannel(cameraID string) chan struct{} {
	p.notifyMutex.Lock()
	defer p.notifyMutex.Unlock()

	notify, exists := p.frameNotify[cameraID]
	if !exists {
		notify = make(chan struct{}, 5)
		p.frameNotify[cameraID] = notify
	}
	return notify
}

func (p *Publisher) cleanupNotifyChannel(cameraID string) {
	p.notifyMutex.Lock()
	defer p.notifyMutex.Unlock()

	if notify, exists := p.frameNotify[cameraID]; exists {
		close(notify)
		delete(p.frameNotify, cameraID)
	}
}

// StreamMJPEG serves a multipart/x-mixed-replace stream until the client
// disconnects. Before the first frame arrives it serves a placeholder so
// viewers see feedback immediately.
func (p *Publisher) StreamMJPEG(w http.ResponseWriter, r *http.Request, cameraID string) {
	boundary := "frame"
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+boundary)
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	notify := p.getOrCreateNotifyChannel(cameraID)
	defer p.cleanupNotifyChannel(cameraID)

	writePart := func(jpeg []byte) bool {
		if _, err := io.WriteString(w, "--"+boundary+"\r\n"); err != nil {
			return false
		}
		if _, err := io.WriteString(w, "Content-Type: image/jpeg\r\n"); err != nil {
			return false
		}
		if _, err := io.WriteString(w, fmt.Sprintf("Content-Length: %d\r\n\r\n", len(jpeg))); err != nil {
			return false
		}
		if _, err := w.Write(jpeg); err != nil {
			return false
		}
		if _, err := io.WriteString(w, "\r\n"); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	first, ok := p.Snapshot(cameraID)
	if !ok {
		first = p.placeholderJPEG(cameraID)
	}
	if len(first) > 0 {
		if !writePart(first) {
			return
		}
	}

	keepaliveTicker := time.NewTicker(keepaliveInterval)
	defer keepaliveTicker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-notify:
			if jpeg, ok := p.Snapshot(cameraID); ok {
				if !writePart(jpeg) {
					return
				}
			}
		case <-keepaliveTicker.C:
			if jpeg, ok := p.Snapshot(cameraID); ok {
				if !writePart(jpeg) {
					return
				}
			}
		}
	}
}

func (p *Publisher) placeholderJPEG(cameraID string) []byte {
	height, width := p.cfg.FrameHeight, p.cfg.FrameWidth
	if height <= 0 || width <= 0 {
		height, width = 480, 640
	}
	placeholder := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	defer placeholder.Close()

	placeholder.SetTo(gocv.Scalar{Val1: 64, Val2: 64, Val3: 64, Val4: 0})

	textColor := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	gocv.PutText(&placeholder, fmt.Sprintf("Camera: %s", cameraID),
		image.Pt(20, height/2-20), gocv.FontHersheySimplex, 1.0, textColor, 2)
	gocv.PutText(&placeholder, "Waiting for frames...",
		image.Pt(20, height/2+20), gocv.FontHersheySimplex, 0.8, textColor, 2)

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, placeholder, []int{gocv.IMWriteJpegQuality, p.jpegQuality()})
	if err != nil {
		return nil
	}
	defer buf.Close()

	b := buf.GetBytes()
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func (p *Publisher) Shutdown() {
	log.Info().Msg("MJPEG publisher shutting down")
}
