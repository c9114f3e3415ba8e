package models

import (
	"time"
)

// Frame is a single captured image sample in BGR24 layout.
// Frames are immutable once produced; pipeline stages must not modify
// Data in place.
type Frame struct {
	CameraID  string
	Data      []byte
	Width     int
	Height    int
	Timestamp time.Time
	Seq       int64
}

// Bytes returns the expected length of Data for the frame dimensions.
func (f *Frame) Bytes() int {
	return f.Width * f.Height * 3
}

// Valid reports whether the frame carries a full BGR24 buffer.
func (f *Frame) Valid() bool {
	return f != nil && f.Width > 0 && f.Height > 0 && len(f.Data) == f.Bytes()
}
