package recorder

import (
	"birdsos/internal/models"
)

// RingBuffer holds the most recent frames captured ahead of a recording
// trigger. Capacity is fixed at construction; pushing into a full buffer
// evicts the oldest frame.
type RingBuffer struct {
	frames []*models.Frame
	head   int
	size   int
}

func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer{frames: make([]*models.Frame, capacity)}
}

// Push appends a frame, dropping the oldest one when full.
func (b *RingBuffer) Push(frame *models.Frame) {
	tail := (b.head + b.size) % len(b.frames)
	b.frames[tail] = frame
	if b.size < len(b.frames) {
		b.size++
	} else {
		b.head = (b.head + 1) % len(b.frames)
	}
}

// Drain returns the buffered frames oldest first and empties the buffer.
func (b *RingBuffer) Drain() []*models.Frame {
	out := make([]*models.Frame, 0, b.size)
	for i := 0; i < b.size; i++ {
		idx := (b.head + i) % len(b.frames)
		out = append(out, b.frames[idx])
		b.frames[idx] = nil
	}
	b.head, b.size = 0, 0
	return out
}

// Clear drops all buffered frames.
func (b *RingBuffer) Clear() {
	for i := range b.frames {
		b.frames[i] = nil
	}
	b.head, b.size = 0, 0
}

func (b *RingBuffer) Len() int { return b.size }

func (b *RingBuffer) Cap() int { return len(b.frames) }
