package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"birdsos/internal/hardware/gpio"
	"birdsos/internal/logging"
)

type GPIOHandler struct {
	manager *gpio.Manager
}

func NewGPIOHandler(manager *gpio.Manager) *GPIOHandler {
	return &GPIOHandler{manager: manager}
}

// PinInfo is one pin in the pins listing. Unconfigured pins report state
// -1 until a mode is set.
type PinInfo struct {
	Pin        int           `json:"pin"`
	Mode       string        `json:"mode"`
	State      int           `json:"state"`
	Configured bool          `json:"configured"`
	PWM        *gpio.PWMInfo `json:"pwm,omitempty"`
}

type PinsResponse struct {
	Pins []PinInfo `json:"pins"`
}

// @Summary List GPIO pins
// @Description Get every usable GPIO pin with its mode, level and PWM setup
// @Tags hardware
// @Produce json
// @Success 200 {object} PinsResponse
// @Router /api/v1/hardware/gpio/pins [get]
func (h *GPIOHandler) ListPins(c *gin.Context) {
	configured := make(map[int]gpio.PinSnapshot)
	for _, snap := range h.manager.Pins() {
		configured[snap.Pin] = snap
	}

	var pins []PinInfo
	for _, pin := range gpio.ValidPins() {
		if snap, ok := configured[pin]; ok {
			pins = append(pins, PinInfo{
				Pin:        pin,
				Mode:       string(snap.Mode),
				State:      int(snap.State),
				Configured: true,
				PWM:        snap.PWM,
			})
			continue
		}
		pins = append(pins, PinInfo{
			Pin:   pin,
			Mode:  string(gpio.ModeIn),
			State: int(gpio.Undefined),
		})
	}
	c.JSON(http.StatusOK, PinsResponse{Pins: pins})
}

// @Summary Get one GPIO pin
// @Description Get the mode, level and PWM setup of a single pin
// @Tags hardware
// @Produce json
// @Param pin path int true "BCM pin number"
// @Success 200 {object} PinInfo
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/hardware/gpio/pins/{pin} [get]
func (h *GPIOHandler) GetPin(c *gin.Context) {
	pin, err := strconv.Atoi(c.Param("pin"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pin must be a number"})
		return
	}

	for _, snap := range h.manager.Pins() {
		if snap.Pin == pin {
			c.JSON(http.StatusOK, PinInfo{
				Pin:        pin,
				Mode:       string(snap.Mode),
				State:      int(snap.State),
				Configured: true,
				PWM:        snap.PWM,
			})
			return
		}
	}
	for _, valid := range gpio.ValidPins() {
		if valid == pin {
			c.JSON(http.StatusOK, PinInfo{
				Pin:   pin,
				Mode:  string(gpio.ModeIn),
				State: int(gpio.Undefined),
			})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "unknown GPIO pin"})
}

type ConfigurePinRequest struct {
	Pin  int    `json:"pin"`
	Mode string `json:"mode"`
}

// @Summary Configure a GPIO pin
// @Description Set the direction of a pin to "in" or "out"
// @Tags hardware
// @Accept json
// @Produce json
// @Param request body ConfigurePinRequest true "Pin configuration"
// @Success 200 {object} PinInfo
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/hardware/gpio/configure [post]
func (h *GPIOHandler) ConfigurePin(c *gin.Context) {
	var req ConfigurePinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mode := gpio.PinMode(strings.ToLower(req.Mode))
	if err := h.manager.ConfigurePin(req.Pin, mode); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, PinInfo{
		Pin:        req.Pin,
		Mode:       string(mode),
		State:      int(h.manager.PinState(req.Pin)),
		Configured: true,
	})
}

type SetStateRequest struct {
	Pin   int  `json:"pin"`
	State *int `json:"state"`
}

// @Summary Set a GPIO output level
// @Description Drive a configured output pin low (0) or high (1)
// @Tags hardware
// @Accept json
// @Produce json
// @Param request body SetStateRequest true "Pin and level"
// @Success 200 {object} PinInfo
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/hardware/gpio/state [post]
func (h *GPIOHandler) SetState(c *gin.Context) {
	var req SetStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.State == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required field: state"})
		return
	}

	state := gpio.PinState(*req.State)
	if !state.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state must be 0 or 1"})
		return
	}
	if err := h.manager.SetPinState(req.Pin, state); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, PinInfo{
		Pin:        req.Pin,
		Mode:       string(gpio.ModeOut),
		State:      int(state),
		Configured: true,
	})
}

type PWMRequest struct {
	Pin       int      `json:"pin"`
	Frequency *float64 `json:"frequency,omitempty"`
	DutyCycle *float64 `json:"duty_cycle,omitempty"`
}

// @Summary Set up PWM on a pin
// @Description Prepare a hardware PWM pin at the given frequency
// @Tags hardware
// @Accept json
// @Produce json
// @Param request body PWMRequest true "Pin and frequency"
// @Success 200 {object} gpio.PWMInfo
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/hardware/gpio/pwm/setup [post]
func (h *GPIOHandler) SetupPWM(c *gin.Context) {
	req, ok := bindPWM(c)
	if !ok {
		return
	}
	if req.Frequency == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required field: frequency"})
		return
	}
	if err := h.manager.SetupPWM(req.Pin, *req.Frequency); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondPWM(c, req.Pin)
}

// @Summary Start PWM output
// @Description Start a prepared PWM pin at the given duty cycle
// @Tags hardware
// @Accept json
// @Produce json
// @Param request body PWMRequest true "Pin and duty cycle"
// @Success 200 {object} gpio.PWMInfo
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/hardware/gpio/pwm/start [post]
func (h *GPIOHandler) StartPWM(c *gin.Context) {
	req, ok := bindPWM(c)
	if !ok {
		return
	}
	if req.DutyCycle == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required field: duty_cycle"})
		return
	}
	if err := h.manager.StartPWM(req.Pin, *req.DutyCycle); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondPWM(c, req.Pin)
}

// @Summary Change PWM duty cycle
// @Description Adjust the duty cycle of a running PWM pin
// @Tags hardware
// @Accept json
// @Produce json
// @Param request body PWMRequest true "Pin and duty cycle"
// @Success 200 {object} gpio.PWMInfo
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/hardware/gpio/pwm/duty [post]
func (h *GPIOHandler) SetPWMDutyCycle(c *gin.Context) {
	req, ok := bindPWM(c)
	if !ok {
		return
	}
	if req.DutyCycle == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required field: duty_cycle"})
		return
	}
	if err := h.manager.SetPWMDutyCycle(req.Pin, *req.DutyCycle); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondPWM(c, req.Pin)
}

// @Summary Change PWM frequency
// @Description Adjust the frequency of a PWM pin
// @Tags hardware
// @Accept json
// @Produce json
// @Param request body PWMRequest true "Pin and frequency"
// @Success 200 {object} gpio.PWMInfo
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/hardware/gpio/pwm/frequency [post]
func (h *GPIOHandler) SetPWMFrequency(c *gin.Context) {
	req, ok := bindPWM(c)
	if !ok {
		return
	}
	if req.Frequency == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required field: frequency"})
		return
	}
	if err := h.manager.SetPWMFrequency(req.Pin, *req.Frequency); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondPWM(c, req.Pin)
}

// @Summary Stop PWM output
// @Description Stop a running PWM pin; its configuration is kept
// @Tags hardware
// @Accept json
// @Produce json
// @Param request body PWMRequest true "Pin"
// @Success 200 {object} gpio.PWMInfo
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/hardware/gpio/pwm/stop [post]
func (h *GPIOHandler) StopPWM(c *gin.Context) {
	req, ok := bindPWM(c)
	if !ok {
		return
	}
	if err := h.manager.StopPWM(req.Pin); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondPWM(c, req.Pin)
}

// @Summary Release GPIO resources
// @Description Stop all PWM output and reset every configured pin
// @Tags hardware
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/hardware/gpio/cleanup [post]
func (h *GPIOHandler) Cleanup(c *gin.Context) {
	if err := h.manager.Cleanup(); err != nil {
		logging.Error(c).Err(err).Msg("GPIO cleanup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "GPIO cleanup completed"})
}

func bindPWM(c *gin.Context) (PWMRequest, bool) {
	var req PWMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return req, false
	}
	return req, true
}

func (h *GPIOHandler) respondPWM(c *gin.Context, pin int) {
	info := h.manager.PWM(pin)
	if info == nil {
		c.JSON(http.StatusOK, gin.H{"pin": pin, "running": false})
		return
	}
	c.JSON(http.StatusOK, info)
}
