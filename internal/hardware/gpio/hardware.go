package gpio

import (
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// Hardware is the raw pin interface the manager drives. Only the mock
// implementation ships today; a native driver plugs in behind the same
// interface when one lands.
type Hardware interface {
	Name() string
	SetupInput(pin int) error
	SetupOutput(pin int, initial PinState) error
	Write(pin int, state PinState) error
	Read(pin int) (PinState, error)
	StartPWM(pin int, frequency, duty float64) error
	SetPWMDuty(pin int, duty float64) error
	SetPWMFrequency(pin int, frequency float64) error
	StopPWM(pin int) error
	Cleanup() error
}

// Detect picks the hardware backend for this host. Off-Pi hosts always get
// the mock; on a Pi we currently still return the mock but say so loudly.
func Detect() Hardware {
	if isRaspberryPi() {
		log.Warn().Msg("Raspberry Pi detected but no native GPIO driver is built in, using mock hardware")
	} else {
		log.Info().Msg("No Raspberry Pi hardware detected, using mock GPIO")
	}
	return NewMockHardware()
}

func isRaspberryPi() bool {
	data, err := os.ReadFile("/sys/firmware/devicetree/base/model")
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(data)), "raspberry pi")
}
