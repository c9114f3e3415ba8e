package gpio

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// PinEvent describes a pin configuration or level change.
type PinEvent struct {
	Pin       int       `json:"pin"`
	Mode      PinMode   `json:"mode"`
	State     PinState  `json:"state"`
	Timestamp time.Time `json:"timestamp"`
}

// EventFunc receives pin events. Callbacks run on the mutating goroutine
// and must not block.
type EventFunc func(PinEvent)

// PWMInfo is the tracked PWM configuration of one pin.
type PWMInfo struct {
	Pin       int     `json:"pin"`
	Frequency float64 `json:"frequency"`
	DutyCycle float64 `json:"duty_cycle"`
	Running   bool    `json:"running"`
}

// PinSnapshot is the externally visible state of one configured pin.
type PinSnapshot struct {
	Pin   int      `json:"pin"`
	Mode  PinMode  `json:"mode"`
	State PinState `json:"state"`
	PWM   *PWMInfo `json:"pwm,omitempty"`
}

// Manager tracks pin modes, output levels and PWM setups on top of a
// Hardware backend. Output levels are cached here; input levels are read
// through on every query.
type Manager struct {
	hw Hardware

	mu           sync.RWMutex
	modes        map[int]PinMode
	outputStates map[int]PinState
	pwm          map[int]*PWMInfo
	listeners    []EventFunc
}

func NewManager(hw Hardware) *Manager {
	log.Info().Str("backend", hw.Name()).Ints("valid_pins", ValidPins()).Msg("GPIO manager initialized")
	return &Manager{
		hw:           hw,
		modes:        make(map[int]PinMode),
		outputStates: make(map[int]PinState),
		pwm:          make(map[int]*PWMInfo),
	}
}

// Subscribe registers a listener for pin events.
func (m *Manager) Subscribe(fn EventFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// ConfigurePin sets a pin's direction. Output pins come up high.
// Reconfiguring an already configured pin is allowed.
func (m *Manager) ConfigurePin(pin int, mode PinMode) error {
	if !isValidPin(pin) {
		return fmt.Errorf("invalid GPIO pin: %d", pin)
	}
	if !mode.IsValid() {
		return fmt.Errorf("invalid pin mode: %q", mode)
	}

	m.mu.Lock()
	if current, ok := m.modes[pin]; ok && current != mode {
		log.Warn().
			Int("pin", pin).
			Str("from", string(current)).
			Str("to", string(mode)).
			Msg("Reconfiguring GPIO pin")
	}

	var state PinState
	var err error
	switch mode {
	case ModeOut:
		state = High
		if err = m.hw.SetupOutput(pin, High); err == nil {
			m.outputStates[pin] = High
		}
	case ModeIn:
		if err = m.hw.SetupInput(pin); err == nil {
			delete(m.outputStates, pin)
			state, _ = m.hw.Read(pin)
		}
	}
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("failed to configure pin %d as %s: %w", pin, mode, err)
	}
	m.modes[pin] = mode
	listeners := m.listeners
	m.mu.Unlock()

	log.Info().Int("pin", pin).Str("mode", string(mode)).Msg("GPIO pin configured")
	emit(listeners, PinEvent{Pin: pin, Mode: mode, State: state, Timestamp: time.Now()})
	return nil
}

// SetPinState drives an output pin.
func (m *Manager) SetPinState(pin int, state PinState) error {
	if !state.IsValid() {
		return fmt.Errorf("invalid pin state: %d", state)
	}

	m.mu.Lock()
	mode, ok := m.modes[pin]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("pin %d is not configured", pin)
	}
	if mode != ModeOut {
		m.mu.Unlock()
		return fmt.Errorf("pin %d is not configured as output", pin)
	}
	if err := m.hw.Write(pin, state); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("failed to set pin %d: %w", pin, err)
	}
	m.outputStates[pin] = state
	listeners := m.listeners
	m.mu.Unlock()

	log.Info().Int("pin", pin).Str("state", state.String()).Msg("GPIO pin set")
	emit(listeners, PinEvent{Pin: pin, Mode: ModeOut, State: state, Timestamp: time.Now()})
	return nil
}

// PinState reports a pin's level. Invalid, unconfigured or unreadable pins
// report Undefined rather than an error.
func (m *Manager) PinState(pin int) PinState {
	if !isValidPin(pin) {
		return Undefined
	}

	m.mu.RLock()
	mode, ok := m.modes[pin]
	if !ok {
		m.mu.RUnlock()
		return Undefined
	}
	if mode == ModeOut {
		state, ok := m.outputStates[pin]
		m.mu.RUnlock()
		if !ok {
			return Undefined
		}
		return state
	}
	m.mu.RUnlock()

	state, err := m.hw.Read(pin)
	if err != nil {
		return Undefined
	}
	return state
}

// ConfiguredPins returns pin numbers mapped to their directions.
func (m *Manager) ConfiguredPins() map[int]PinMode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int]PinMode, len(m.modes))
	for pin, mode := range m.modes {
		out[pin] = mode
	}
	return out
}

// Pins returns a sorted snapshot of every configured pin.
func (m *Manager) Pins() []PinSnapshot {
	m.mu.RLock()
	snapshots := make([]PinSnapshot, 0, len(m.modes))
	for pin, mode := range m.modes {
		snap := PinSnapshot{Pin: pin, Mode: mode, State: Undefined}
		if mode == ModeOut {
			if state, ok := m.outputStates[pin]; ok {
				snap.State = state
			}
		} else if state, err := m.hw.Read(pin); err == nil {
			snap.State = state
		}
		if info, ok := m.pwm[pin]; ok {
			copied := *info
			snap.PWM = &copied
		}
		snapshots = append(snapshots, snap)
	}
	m.mu.RUnlock()

	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].Pin < snapshots[j].Pin })
	return snapshots
}

// SetupPWM prepares PWM on an output pin. Start it with StartPWM.
func (m *Manager) SetupPWM(pin int, frequency float64) error {
	if !isValidPin(pin) {
		return fmt.Errorf("invalid GPIO pin: %d", pin)
	}
	if frequency <= 0 {
		return fmt.Errorf("invalid PWM frequency: %v", frequency)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	mode, ok := m.modes[pin]
	if !ok {
		return fmt.Errorf("pin %d is not configured", pin)
	}
	if mode != ModeOut {
		return fmt.Errorf("pin %d is not configured as output", pin)
	}
	if _, ok := m.pwm[pin]; ok {
		log.Warn().Int("pin", pin).Msg("PWM already set up on pin, replacing")
	}

	if !isHardwarePWMPin(pin) {
		log.Warn().
			Int("pin", pin).
			Msg("Pin has no hardware PWM, using software PWM (hardware pairs: 12/13 and 18/19)")
	} else if partner, shared := m.sharedGeneratorPartner(pin); shared {
		log.Warn().
			Int("pin", pin).
			Int("partner", partner).
			Msg("Pins share one PWM generator, changing one changes both")
	}

	m.pwm[pin] = &PWMInfo{Pin: pin, Frequency: frequency}
	log.Info().Int("pin", pin).Float64("frequency", frequency).Msg("PWM configured")
	return nil
}

// sharedGeneratorPartner reports whether the other pin on the same SoC PWM
// generator is already set up. Callers hold the lock.
func (m *Manager) sharedGeneratorPartner(pin int) (int, bool) {
	var partner int
	switch pin {
	case 12:
		partner = 13
	case 13:
		partner = 12
	case 18:
		partner = 19
	case 19:
		partner = 18
	default:
		return 0, false
	}
	_, ok := m.pwm[partner]
	return partner, ok
}

// StartPWM starts the signal with the given duty cycle (0-100).
func (m *Manager) StartPWM(pin int, duty float64) error {
	if duty < 0 || duty > 100 {
		return fmt.Errorf("invalid duty cycle: %v", duty)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.pwm[pin]
	if !ok {
		return fmt.Errorf("no PWM configured on pin %d", pin)
	}
	if err := m.hw.StartPWM(pin, info.Frequency, duty); err != nil {
		return fmt.Errorf("failed to start PWM on pin %d: %w", pin, err)
	}
	info.DutyCycle = duty
	info.Running = true
	log.Info().Int("pin", pin).Float64("duty_cycle", duty).Msg("PWM started")
	return nil
}

// SetPWMDutyCycle adjusts the duty cycle (0-100) of a configured PWM pin.
func (m *Manager) SetPWMDutyCycle(pin int, duty float64) error {
	if duty < 0 || duty > 100 {
		return fmt.Errorf("invalid duty cycle: %v", duty)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.pwm[pin]
	if !ok {
		return fmt.Errorf("no PWM configured on pin %d", pin)
	}
	if info.Running {
		if err := m.hw.SetPWMDuty(pin, duty); err != nil {
			return fmt.Errorf("failed to set duty cycle on pin %d: %w", pin, err)
		}
	}
	info.DutyCycle = duty
	return nil
}

// SetPWMFrequency adjusts the frequency of a configured PWM pin.
func (m *Manager) SetPWMFrequency(pin int, frequency float64) error {
	if frequency <= 0 {
		return fmt.Errorf("invalid PWM frequency: %v", frequency)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.pwm[pin]
	if !ok {
		return fmt.Errorf("no PWM configured on pin %d", pin)
	}
	if info.Running {
		if err := m.hw.SetPWMFrequency(pin, frequency); err != nil {
			return fmt.Errorf("failed to set frequency on pin %d: %w", pin, err)
		}
	}
	info.Frequency = frequency
	return nil
}

// StopPWM halts the signal but keeps the configuration.
func (m *Manager) StopPWM(pin int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.pwm[pin]
	if !ok {
		return fmt.Errorf("no PWM configured on pin %d", pin)
	}
	if info.Running {
		if err := m.hw.StopPWM(pin); err != nil {
			return fmt.Errorf("failed to stop PWM on pin %d: %w", pin, err)
		}
	}
	info.Running = false
	log.Info().Int("pin", pin).Msg("PWM stopped")
	return nil
}

// RemovePWM stops and forgets the PWM setup on a pin. Removing a pin with
// no PWM is a no-op.
func (m *Manager) RemovePWM(pin int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.pwm[pin]
	if !ok {
		return
	}
	if info.Running {
		if err := m.hw.StopPWM(pin); err != nil {
			log.Warn().Err(err).Int("pin", pin).Msg("Failed to stop PWM during removal")
		}
	}
	delete(m.pwm, pin)
	log.Info().Int("pin", pin).Msg("PWM removed")
}

// PWM returns a copy of the PWM setup on a pin, or nil.
func (m *Manager) PWM(pin int) *PWMInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	info, ok := m.pwm[pin]
	if !ok {
		return nil
	}
	copied := *info
	return &copied
}

// Cleanup releases the hardware and forgets all pin state.
func (m *Manager) Cleanup() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hw.Cleanup(); err != nil {
		return fmt.Errorf("GPIO cleanup failed: %w", err)
	}
	m.modes = make(map[int]PinMode)
	m.outputStates = make(map[int]PinState)
	m.pwm = make(map[int]*PWMInfo)
	log.Info().Msg("GPIO cleanup completed")
	return nil
}

func emit(listeners []EventFunc, event PinEvent) {
	for _, fn := range listeners {
		fn(event)
	}
}
