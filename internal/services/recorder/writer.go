package recorder

import (
	"fmt"

	"gocv.io/x/gocv"

	"birdsos/internal/models"
)

// SessionWriter writes the frames of one recording session to disk.
type SessionWriter interface {
	Write(frame *models.Frame) error
	Close() error
}

// WriterFactory opens a SessionWriter for a new session file.
type WriterFactory func(path string, width, height, fps int) (SessionWriter, error)

type videoWriter struct {
	writer *gocv.VideoWriter
}

// NewVideoWriter returns a factory producing gocv-backed writers using the
// given FourCC codec (MJPG, XVID, ...).
func NewVideoWriter(codec string) WriterFactory {
	return func(path string, width, height, fps int) (SessionWriter, error) {
		w, err := gocv.VideoWriterFile(path, codec, float64(fps), width, height, true)
		if err != nil {
			return nil, fmt.Errorf("failed to open video writer for %s: %w", path, err)
		}
		if !w.IsOpened() {
			w.Close()
			return nil, fmt.Errorf("video writer did not open for %s", path)
		}
		return &videoWriter{writer: w}, nil
	}
}

func (vw *videoWriter) Write(frame *models.Frame) error {
	mat, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC3, frame.Data)
	if err != nil {
		return fmt.Errorf("failed to wrap frame for writing: %w", err)
	}
	defer mat.Close()

	if err := vw.writer.Write(mat); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

func (vw *videoWriter) Close() error {
	return vw.writer.Close()
}
