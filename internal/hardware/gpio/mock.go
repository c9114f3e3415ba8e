package gpio

import (
	"fmt"
	"sync"
)

type mockPWM struct {
	frequency float64
	duty      float64
	running   bool
}

// MockHardware keeps all pin state in memory. Input pin levels can be
// injected with SetInputState to simulate external events.
type MockHardware struct {
	mu      sync.RWMutex
	inputs  map[int]PinState
	outputs map[int]PinState
	pwm     map[int]*mockPWM
}

func NewMockHardware() *MockHardware {
	return &MockHardware{
		inputs:  make(map[int]PinState),
		outputs: make(map[int]PinState),
		pwm:     make(map[int]*mockPWM),
	}
}

func (h *MockHardware) Name() string { return "mock" }

func (h *MockHardware) SetupInput(pin int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.outputs, pin)
	if _, ok := h.inputs[pin]; !ok {
		h.inputs[pin] = Low
	}
	return nil
}

func (h *MockHardware) SetupOutput(pin int, initial PinState) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.inputs, pin)
	h.outputs[pin] = initial
	return nil
}

func (h *MockHardware) Write(pin int, state PinState) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.outputs[pin]; !ok {
		return fmt.Errorf("pin %d is not set up as output", pin)
	}
	h.outputs[pin] = state
	return nil
}

func (h *MockHardware) Read(pin int) (PinState, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if state, ok := h.inputs[pin]; ok {
		return state, nil
	}
	if state, ok := h.outputs[pin]; ok {
		return state, nil
	}
	return Undefined, fmt.Errorf("pin %d is not set up", pin)
}

// SetInputState injects an external level change on an input pin.
func (h *MockHardware) SetInputState(pin int, state PinState) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.inputs[pin]; !ok {
		return fmt.Errorf("pin %d is not set up as input", pin)
	}
	h.inputs[pin] = state
	return nil
}

func (h *MockHardware) StartPWM(pin int, frequency, duty float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pwm[pin] = &mockPWM{frequency: frequency, duty: duty, running: true}
	return nil
}

func (h *MockHardware) SetPWMDuty(pin int, duty float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.pwm[pin]
	if !ok {
		return fmt.Errorf("no PWM on pin %d", pin)
	}
	p.duty = duty
	return nil
}

func (h *MockHardware) SetPWMFrequency(pin int, frequency float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.pwm[pin]
	if !ok {
		return fmt.Errorf("no PWM on pin %d", pin)
	}
	p.frequency = frequency
	return nil
}

func (h *MockHardware) StopPWM(pin int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.pwm[pin]
	if !ok {
		return fmt.Errorf("no PWM on pin %d", pin)
	}
	p.running = false
	return nil
}

func (h *MockHardware) Cleanup() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.inputs = make(map[int]PinState)
	h.outputs = make(map[int]PinState)
	h.pwm = make(map[int]*mockPWM)
	return nil
}
