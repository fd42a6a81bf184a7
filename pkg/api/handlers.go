package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gitlab.com/gomidi/midi/v2"

	"github.com/james-see/midiunion/pkg/device"
	"github.com/james-see/midiunion/pkg/forwarder"
	"github.com/james-see/midiunion/pkg/router"
)

// StartRequest selects the devices and routing of a new session.
// Routing defaults to forwarding everything untouched.
type StartRequest struct {
	Input   string         `json:"input" binding:"required"`
	Output  string         `json:"output" binding:"required"`
	Routing *router.Config `json:"routing"`
}

// RouteRequest runs one message through a routing config without any device
type RouteRequest struct {
	Routing router.Config `json:"routing"`
	Message []int         `json:"message" binding:"required"`
}

// RouteResponse is the outcome of a dry run
type RouteResponse struct {
	Original    []int  `json:"original"`
	Message     []int  `json:"message"`
	Changed     bool   `json:"changed"`
	Description string `json:"description"`
}

// NoteInfo is a sounding note
type NoteInfo struct {
	Note   uint8  `json:"note"`
	Name   string `json:"name"`
	Octave int    `json:"octave"`
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "midiunion",
	})
}

// listDevices godoc
// @Summary List MIDI devices
// @Description Returns the input and output ports the driver currently sees
// @Tags devices
// @Produce json
// @Success 200 {object} map[string][]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/devices [get]
func (s *Server) listDevices(c *gin.Context) {
	ins, outs, err := s.fwd.Devices()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if ins == nil {
		ins = []string{}
	}
	if outs == nil {
		outs = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"inputs":  ins,
		"outputs": outs,
	})
}

// getStatus godoc
// @Summary Forwarding status
// @Description Returns the state of the forwarder and the active session, if any
// @Tags forward
// @Produce json
// @Success 200 {object} forwarder.Status
// @Router /api/v1/status [get]
func (s *Server) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.fwd.Status())
}

// getNotes godoc
// @Summary Active notes
// @Description Returns the notes currently sounding on the output
// @Tags forward
// @Produce json
// @Success 200 {object} map[string][]NoteInfo
// @Router /api/v1/notes [get]
func (s *Server) getNotes(c *gin.Context) {
	notes := s.fwd.ActiveNotes()
	out := make([]NoteInfo, 0, len(notes))
	for _, n := range notes {
		out = append(out, NoteInfo{Note: n, Name: router.NoteName(n), Octave: router.Octave(n)})
	}
	c.JSON(http.StatusOK, gin.H{"notes": out})
}

// startForwarding godoc
// @Summary Start forwarding
// @Description Opens the input and output devices and starts forwarding with the given routing
// @Tags forward
// @Accept json
// @Produce json
// @Param request body StartRequest true "Devices and routing"
// @Success 200 {object} forwarder.Status
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/forward/start [post]
func (s *Server) startForwarding(c *gin.Context) {
	// omitted routing fields keep their defaults instead of meaning channel 1
	cfg := router.DefaultConfig()
	req := StartRequest{Routing: &cfg}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Routing == nil {
		req.Routing = &cfg
	}

	if err := s.fwd.Start(req.Input, req.Output, *req.Routing); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.fwd.Status())
}

// stopForwarding godoc
// @Summary Stop forwarding
// @Description Stops the active session and closes both devices. Stopping an idle forwarder is not an error.
// @Tags forward
// @Produce json
// @Success 200 {object} forwarder.Status
// @Router /api/v1/forward/stop [post]
func (s *Server) stopForwarding(c *gin.Context) {
	s.fwd.Stop()
	c.JSON(http.StatusOK, s.fwd.Status())
}

// routeMessage godoc
// @Summary Dry-run routing
// @Description Applies a routing config to one raw MIDI message and returns the result
// @Tags route
// @Accept json
// @Produce json
// @Param request body RouteRequest true "Routing config and message bytes"
// @Success 200 {object} RouteResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/route [post]
func (s *Server) routeMessage(c *gin.Context) {
	req := RouteRequest{Routing: router.DefaultConfig()}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg := make(midi.Message, len(req.Message))
	for i, b := range req.Message {
		if b < 0 || b > 0xFF {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message bytes must be 0-255"})
			return
		}
		msg[i] = byte(b)
	}

	policy, err := router.NewPolicy(req.Routing)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	res := policy.Apply(msg)
	c.JSON(http.StatusOK, RouteResponse{
		Original:    ints(res.Original),
		Message:     ints(res.Message),
		Changed:     res.Transform.Changed(),
		Description: router.Describe(res),
	})
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, forwarder.ErrConfiguration), errors.Is(err, router.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, forwarder.ErrRunning):
		return http.StatusConflict
	case errors.Is(err, device.ErrDeviceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func ints(msg midi.Message) []int {
	out := make([]int, len(msg))
	for i, b := range msg {
		out[i] = int(b)
	}
	return out
}
