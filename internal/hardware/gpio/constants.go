package gpio

// PinState is the logic level of a pin. Undefined is returned for pins
// that are invalid, unconfigured or unreadable.
type PinState int

const (
	Low       PinState = 0
	High      PinState = 1
	Undefined PinState = -1
)

func (s PinState) String() string {
	switch s {
	case Low:
		return "low"
	case High:
		return "high"
	default:
		return "undefined"
	}
}

func (s PinState) IsValid() bool {
	return s == Low || s == High
}

// PinMode is the configured direction of a pin.
type PinMode string

const (
	ModeIn  PinMode = "in"
	ModeOut PinMode = "out"
)

func (m PinMode) IsValid() bool {
	return m == ModeIn || m == ModeOut
}

// validPins is the usable BCM pin set of the 40-pin header.
var validPins = []int{
	2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
	16, 17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27,
}

// hardwarePWMPins can drive PWM from the SoC. 12 and 13 share one
// generator, 18 and 19 the other.
var hardwarePWMPins = []int{12, 13, 18, 19}

// ValidPins returns the usable BCM pin numbers.
func ValidPins() []int {
	out := make([]int, len(validPins))
	copy(out, validPins)
	return out
}

func isValidPin(pin int) bool {
	for _, p := range validPins {
		if p == pin {
			return true
		}
	}
	return false
}

func isHardwarePWMPin(pin int) bool {
	for _, p := range hardwarePWMPins {
		if p == pin {
			return true
		}
	}
	return false
}
