package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	z "github.com/Oudwins/zog"

	"auvlab.xyz/triton-com-server/pkg/auv"
)

type PositionBody struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// HeartbeatRequest parses only the fields the core inspects; the raw body
// is what gets persisted.
type HeartbeatRequest struct {
	Mid         string          `json:"mid"`
	Fw          string          `json:"fw"`
	HbSeq       int             `json:"hb_seq"`
	TsUtc       time.Time       `json:"ts_utc"`
	State       string          `json:"state"`
	Position    *PositionBody   `json:"position"`
	Power       json.RawMessage `json:"power"`
	Environment json.RawMessage `json:"environment"`
	Network     json.RawMessage `json:"network"`
}

var heartbeatRequestSchema = z.Struct(z.Shape{
	"Mid":   z.String().Min(1).Required(),
	"HbSeq": z.Int().Required(),
	"TsUtc": z.Time().Required(),
	"State": z.String().Min(1).Required(),
})

type HeartbeatResponse struct {
	Ack     bool               `json:"ack"`
	Command *auv.IssuedCommand `json:"command"`
}

func (rs *RestfulServer) PostHeartbeat(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		rs.writeInvalid(c, "unreadable request body")
		return
	}

	var req HeartbeatRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		rs.writeInvalid(c, "malformed json")
		return
	}
	if issues := heartbeatRequestSchema.Validate(&req); issues != nil {
		rs.writeInvalid(c, fmt.Sprintf("%v", issues))
		return
	}

	if !rs.CheckDeviceLimiter(req.Mid) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	ctx, cancel := rs.vehicleContext(c)
	defer cancel()

	in := &auv.HeartbeatInput{
		Mid:         req.Mid,
		Fw:          req.Fw,
		HbSeq:       int64(req.HbSeq),
		TsUtc:       req.TsUtc,
		State:       req.State,
		Power:       req.Power,
		Environment: req.Environment,
		Network:     req.Network,
		Raw:         raw,
	}
	if req.Position != nil {
		in.Position = &auv.Position{Lat: req.Position.Lat, Lon: req.Position.Lon}
	}

	result, err := rs.Auv.Ingest.Heartbeat(ctx, in)
	if err != nil {
		rs.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, HeartbeatResponse{Ack: true, Command: result.Command})
}

type DescentCheckRequest struct {
	Mid      string    `json:"mid"`
	Fw       string    `json:"fw"`
	TsUtc    time.Time `json:"ts_utc"`
	CheckSeq int       `json:"check_seq"`
	CmdSeq   int       `json:"cmd_seq"`
	PlanHash string    `json:"plan_hash"`
}

var descentCheckRequestSchema = z.Struct(z.Shape{
	"Mid":      z.String().Min(1).Required(),
	"TsUtc":    z.Time().Required(),
	"CheckSeq": z.Int().Required(),
	"CmdSeq":   z.Int().Required(),
	"PlanHash": z.String().Min(4).Required(),
})

type DescentCheckResponse struct {
	Ok     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

func (rs *RestfulServer) PostDescentCheck(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		rs.writeInvalid(c, "unreadable request body")
		return
	}

	var req DescentCheckRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		rs.writeInvalid(c, "malformed json")
		return
	}
	if issues := descentCheckRequestSchema.Validate(&req); issues != nil {
		rs.writeInvalid(c, fmt.Sprintf("%v", issues))
		return
	}

	if !rs.CheckDeviceLimiter(req.Mid) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	ctx, cancel := rs.vehicleContext(c)
	defer cancel()

	decision, err := rs.Auv.Descent.Check(ctx, &auv.DescentCheckInput{
		Mid:      req.Mid,
		CheckSeq: int64(req.CheckSeq),
		CmdSeq:   int64(req.CmdSeq),
		PlanHash: req.PlanHash,
		TsUtc:    req.TsUtc,
		Raw:      raw,
	})
	if err != nil {
		rs.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, DescentCheckResponse{Ok: decision.Ok, Reason: decision.Reason})
}

type AscentNotifyRequest struct {
	Mid     string         `json:"mid"`
	Fw      string         `json:"fw"`
	TsUtc   time.Time      `json:"ts_utc"`
	CmdSeq  int            `json:"cmd_seq"`
	Ok      bool           `json:"ok"`
	Summary map[string]any `json:"summary"`
	Remarks string         `json:"remarks"`
}

var ascentNotifyRequestSchema = z.Struct(z.Shape{
	"Mid":    z.String().Min(1).Required(),
	"TsUtc":  z.Time().Required(),
	"CmdSeq": z.Int().Required(),
})

func (rs *RestfulServer) PostAscentNotify(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		rs.writeInvalid(c, "unreadable request body")
		return
	}

	var req AscentNotifyRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		rs.writeInvalid(c, "malformed json")
		return
	}
	if issues := ascentNotifyRequestSchema.Validate(&req); issues != nil {
		rs.writeInvalid(c, fmt.Sprintf("%v", issues))
		return
	}

	if !rs.CheckDeviceLimiter(req.Mid) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	ctx, cancel := rs.vehicleContext(c)
	defer cancel()

	if _, err := rs.Auv.Ascent.Notify(ctx, &auv.AscentInput{
		Mid:     req.Mid,
		CmdSeq:  int64(req.CmdSeq),
		Ok:      req.Ok,
		Summary: req.Summary,
		TsUtc:   req.TsUtc,
		Raw:     raw,
	}); err != nil {
		rs.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ack": true})
}
