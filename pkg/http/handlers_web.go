package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	z "github.com/Oudwins/zog"

	"auvlab.xyz/triton-com-server/pkg/auv"
	"auvlab.xyz/triton-com-server/pkg/common"
	"auvlab.xyz/triton-com-server/pkg/models"
)

// onlineThreshold is how recently a device must have been heard from to be
// shown online; a bit above the 15 s heartbeat cadence.
const onlineThreshold = 60 * time.Second

type DeviceView struct {
	Mid         string          `json:"mid"`
	Fw          string          `json:"fw"`
	State       string          `json:"state"`
	LastHbSeq   *int64          `json:"last_hb_seq"`
	LastSeenAt  time.Time       `json:"last_seen_at"`
	Online      bool            `json:"online"`
	Position    json.RawMessage `json:"position,omitempty"`
	Power       json.RawMessage `json:"power,omitempty"`
	Environment json.RawMessage `json:"environment,omitempty"`
	Network     json.RawMessage `json:"network,omitempty"`
}

func deviceView(dev models.Device, now time.Time) DeviceView {
	return DeviceView{
		Mid:         dev.Mid,
		Fw:          dev.Fw,
		State:       dev.LastState,
		LastHbSeq:   dev.LastHbSeq,
		LastSeenAt:  dev.LastSeenAt,
		Online:      now.Sub(dev.LastSeenAt) < onlineThreshold,
		Position:    json.RawMessage(dev.LastPos),
		Power:       json.RawMessage(dev.LastPwr),
		Environment: json.RawMessage(dev.LastEnv),
		Network:     json.RawMessage(dev.LastNet),
	}
}

func (rs *RestfulServer) ListDevices(c *gin.Context) {
	cur, err := cursorParam(c)
	if err != nil {
		rs.writeInvalid(c, "malformed cursor")
		return
	}

	q := &auv.DeviceQuery{
		State: c.Query("status"),
		Limit: pageLimit(c),
	}
	if cur != nil {
		q.AfterMid = cur.Mid
	}

	devices, err := rs.Auv.Query.ListDevices(c.Request.Context(), q)
	if err != nil {
		rs.writeError(c, err)
		return
	}

	now := time.Now().UTC()
	resp := gin.H{"items": common.Mapper(devices, func(d models.Device) DeviceView {
		return deviceView(d, now)
	})}
	if len(devices) == q.Limit {
		last := devices[len(devices)-1]
		resp["next_cursor"] = encodeCursor(pageCursor{Mid: last.Mid, CreatedAt: last.LastSeenAt})
	}
	c.JSON(http.StatusOK, resp)
}

func (rs *RestfulServer) GetDevice(c *gin.Context) {
	dev, err := rs.Auv.Query.GetDevice(c.Request.Context(), c.Param("mid"))
	if err != nil {
		rs.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, deviceView(*dev, time.Now().UTC()))
}

func (rs *RestfulServer) GetDeviceStatus(c *gin.Context) {
	dev, err := rs.Auv.Query.GetDevice(c.Request.Context(), c.Param("mid"))
	if err != nil {
		rs.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"mid":          dev.Mid,
		"state":        dev.LastState,
		"last_hb_seq":  dev.LastHbSeq,
		"last_seen_at": dev.LastSeenAt,
		"online":       time.Now().UTC().Sub(dev.LastSeenAt) < onlineThreshold,
	})
}

type LimiterRequest struct {
	Rate  float64 `json:"rate"`
	Burst int     `json:"burst"`
}

var limiterRequestSchema = z.Struct(z.Shape{
	"Rate":  z.Float64().Required(),
	"Burst": z.Int().Required(),
})

func (rs *RestfulServer) PostLimiter(c *gin.Context) {
	mid := c.Param("mid")

	raw, err := c.GetRawData()
	if err != nil {
		rs.writeInvalid(c, "unreadable request body")
		return
	}
	var req LimiterRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		rs.writeInvalid(c, "malformed json")
		return
	}
	if issues := limiterRequestSchema.Validate(&req); issues != nil {
		rs.writeInvalid(c, fmt.Sprintf("%v", issues))
		return
	}

	rs.SetLimiter(mid, req.Rate, req.Burst)

	c.Status(http.StatusOK)
}

type CommandView struct {
	CommandID   int64           `json:"command_id"`
	Mid         string          `json:"mid"`
	Seq         int64           `json:"seq"`
	Cmd         string          `json:"cmd"`
	Args        json.RawMessage `json:"args,omitempty"`
	PlanHash    string          `json:"plan_hash"`
	Status      string          `json:"status"`
	IssuedBy    string          `json:"issued_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	IssuedAt    *time.Time      `json:"issued_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

func commandView(cmd models.Command) CommandView {
	return CommandView{
		CommandID:   cmd.ID,
		Mid:         cmd.Mid,
		Seq:         cmd.Seq,
		Cmd:         cmd.Cmd,
		Args:        json.RawMessage(cmd.Args),
		PlanHash:    cmd.PlanHash,
		Status:      string(cmd.Status),
		IssuedBy:    cmd.IssuedBy,
		CreatedAt:   cmd.CreatedAt,
		IssuedAt:    cmd.IssuedAt,
		CompletedAt: cmd.CompletedAt,
	}
}

type RunDiveArgsBody struct {
	TargetDepthM float64 `json:"target_depth_m"`
	HoldAtDepthS int     `json:"hold_at_depth_s"`
	Cycles       int     `json:"cycles"`
}

type CommandRequest struct {
	Mid  string          `json:"mid"`
	Cmd  string          `json:"cmd"`
	Args RunDiveArgsBody `json:"args"`
}

var commandRequestSchema = z.Struct(z.Shape{
	"Mid": z.String().Min(1).Required(),
	"Cmd": z.String().Min(1).Required(),
})

var runDiveArgsSchema = z.Struct(z.Shape{
	"TargetDepthM": z.Float64().GT(0).Required(),
	"HoldAtDepthS": z.Int().GT(0).Required(),
	"Cycles":       z.Int().GT(0).Required(),
})

func (rs *RestfulServer) PostCommand(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		rs.writeInvalid(c, "unreadable request body")
		return
	}

	var req CommandRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		rs.writeInvalid(c, "malformed json")
		return
	}
	if issues := commandRequestSchema.Validate(&req); issues != nil {
		rs.writeInvalid(c, fmt.Sprintf("%v", issues))
		return
	}
	if req.Cmd != "RUN_DIVE" {
		rs.writeInvalid(c, fmt.Sprintf("unsupported command kind %q", req.Cmd))
		return
	}
	if issues := runDiveArgsSchema.Validate(&req.Args); issues != nil {
		rs.writeInvalid(c, fmt.Sprintf("%v", issues))
		return
	}

	cmd, err := rs.Auv.Command.Enqueue(c.Request.Context(), &auv.EnqueueInput{
		Mid: req.Mid,
		Cmd: req.Cmd,
		Args: map[string]any{
			"target_depth_m":  req.Args.TargetDepthM,
			"hold_at_depth_s": float64(req.Args.HoldAtDepthS),
			"cycles":          float64(req.Args.Cycles),
		},
		IssuedBy: "web_api",
	})
	if err != nil {
		rs.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, commandView(*cmd))
}

func (rs *RestfulServer) ListCommands(c *gin.Context) {
	cur, err := cursorParam(c)
	if err != nil {
		rs.writeInvalid(c, "malformed cursor")
		return
	}
	from, err := timeParam(c, "from")
	if err != nil {
		rs.writeInvalid(c, "malformed from")
		return
	}
	to, err := timeParam(c, "to")
	if err != nil {
		rs.writeInvalid(c, "malformed to")
		return
	}

	q := &auv.CommandQuery{
		Mid:    c.Query("mid"),
		Status: models.CommandStatus(c.Query("status")),
		From:   from,
		To:     to,
		Limit:  pageLimit(c),
	}
	if cur != nil {
		q.BeforeID = cur.ID
	}

	cmds, err := rs.Auv.Command.List(c.Request.Context(), q)
	if err != nil {
		rs.writeError(c, err)
		return
	}

	resp := gin.H{"items": common.Mapper(cmds, commandView)}
	if len(cmds) == q.Limit {
		last := cmds[len(cmds)-1]
		resp["next_cursor"] = encodeCursor(pageCursor{ID: last.ID, CreatedAt: last.CreatedAt})
	}
	c.JSON(http.StatusOK, resp)
}

func (rs *RestfulServer) GetCommand(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		rs.writeInvalid(c, "malformed command id")
		return
	}
	cmd, err := rs.Auv.Command.Get(c.Request.Context(), id)
	if err != nil {
		rs.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, commandView(*cmd))
}

func (rs *RestfulServer) GetLatestTelemetry(c *gin.Context) {
	tele, err := rs.Auv.Query.LatestTelemetry(c.Request.Context(), c.Param("mid"))
	if err != nil {
		rs.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tele)
}

type HeartbeatView struct {
	HbSeq      int64           `json:"hb_seq"`
	TsUtc      time.Time       `json:"ts_utc"`
	ReceivedAt time.Time       `json:"received_at"`
	Payload    json.RawMessage `json:"payload"`
}

func heartbeatView(hb models.Heartbeat) HeartbeatView {
	return HeartbeatView{
		HbSeq:      hb.HbSeq,
		TsUtc:      hb.TsUtc,
		ReceivedAt: hb.ReceivedAt,
		Payload:    json.RawMessage(hb.Payload),
	}
}

func (rs *RestfulServer) ListHeartbeats(c *gin.Context) {
	mid := c.Query("mid")
	if mid == "" {
		rs.writeInvalid(c, "mid query param is required")
		return
	}
	cur, err := cursorParam(c)
	if err != nil {
		rs.writeInvalid(c, "malformed cursor")
		return
	}
	from, err := timeParam(c, "from")
	if err != nil {
		rs.writeInvalid(c, "malformed from")
		return
	}
	to, err := timeParam(c, "to")
	if err != nil {
		rs.writeInvalid(c, "malformed to")
		return
	}

	q := &auv.HeartbeatQuery{Mid: mid, From: from, To: to, Limit: pageLimit(c)}
	if cur != nil {
		q.BeforeID = cur.ID
	}

	hbs, err := rs.Auv.Query.ListHeartbeats(c.Request.Context(), q)
	if err != nil {
		rs.writeError(c, err)
		return
	}

	resp := gin.H{"mid": mid, "items": common.Mapper(hbs, heartbeatView)}
	if len(hbs) == q.Limit {
		last := hbs[len(hbs)-1]
		resp["next_cursor"] = encodeCursor(pageCursor{ID: last.ID, CreatedAt: last.ReceivedAt})
	}
	c.JSON(http.StatusOK, resp)
}

func (rs *RestfulServer) GetTrajectory(c *gin.Context) {
	format := c.DefaultQuery("format", "geojson")
	if format != "geojson" && format != "detailed" {
		rs.writeInvalid(c, fmt.Sprintf("unknown format %q", format))
		return
	}
	from, err := timeParam(c, "from")
	if err != nil {
		rs.writeInvalid(c, "malformed from")
		return
	}
	to, err := timeParam(c, "to")
	if err != nil {
		rs.writeInvalid(c, "malformed to")
		return
	}
	sampling := 0
	if raw := c.Query("sampling"); raw != "" {
		if sampling, err = strconv.Atoi(raw); err != nil || sampling < 1 {
			rs.writeInvalid(c, "malformed sampling")
			return
		}
	}

	fc, err := rs.Auv.Trajectory.Build(c.Request.Context(), &auv.TrajectoryQuery{
		Mid:      c.Param("mid"),
		From:     from,
		To:       to,
		Detailed: format == "detailed",
		Sampling: sampling,
	})
	if err != nil {
		rs.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, fc)
}

type DiveView struct {
	DiveID    int64           `json:"dive_id"`
	Mid       string          `json:"mid"`
	CmdSeq    int64           `json:"cmd_seq"`
	Ok        bool            `json:"ok"`
	Summary   json.RawMessage `json:"summary,omitempty"`
	StartedAt *time.Time      `json:"started_at,omitempty"`
	EndedAt   *time.Time      `json:"ended_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func diveView(dive models.Dive) DiveView {
	return DiveView{
		DiveID:    dive.ID,
		Mid:       dive.Mid,
		CmdSeq:    dive.CmdSeq,
		Ok:        dive.Ok,
		Summary:   json.RawMessage(dive.Summary),
		StartedAt: dive.StartedAt,
		EndedAt:   dive.EndedAt,
		CreatedAt: dive.CreatedAt,
	}
}

func (rs *RestfulServer) ListDives(c *gin.Context) {
	cur, err := cursorParam(c)
	if err != nil {
		rs.writeInvalid(c, "malformed cursor")
		return
	}
	from, err := timeParam(c, "from")
	if err != nil {
		rs.writeInvalid(c, "malformed from")
		return
	}
	to, err := timeParam(c, "to")
	if err != nil {
		rs.writeInvalid(c, "malformed to")
		return
	}

	q := &auv.DiveQuery{Mid: c.Query("mid"), From: from, To: to, Limit: pageLimit(c)}
	if cur != nil {
		q.BeforeID = cur.ID
	}

	dives, err := rs.Auv.Ascent.ListDives(c.Request.Context(), q)
	if err != nil {
		rs.writeError(c, err)
		return
	}

	resp := gin.H{"items": common.Mapper(dives, diveView)}
	if len(dives) == q.Limit {
		last := dives[len(dives)-1]
		resp["next_cursor"] = encodeCursor(pageCursor{ID: last.ID, CreatedAt: last.CreatedAt})
	}
	c.JSON(http.StatusOK, resp)
}

func (rs *RestfulServer) GetDive(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		rs.writeInvalid(c, "malformed dive id")
		return
	}
	dive, err := rs.Auv.Ascent.GetDive(c.Request.Context(), id)
	if err != nil {
		rs.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, diveView(*dive))
}

type EventView struct {
	ID        int64           `json:"id"`
	Mid       *string         `json:"mid,omitempty"`
	EventType string          `json:"event_type"`
	Detail    json.RawMessage `json:"detail"`
	CreatedAt time.Time       `json:"created_at"`
}

func eventView(ev models.EventLog) EventView {
	return EventView{
		ID:        ev.ID,
		Mid:       ev.Mid,
		EventType: ev.EventType,
		Detail:    json.RawMessage(ev.Detail),
		CreatedAt: ev.CreatedAt,
	}
}

func (rs *RestfulServer) ListEvents(c *gin.Context) {
	cur, err := cursorParam(c)
	if err != nil {
		rs.writeInvalid(c, "malformed cursor")
		return
	}
	from, err := timeParam(c, "from")
	if err != nil {
		rs.writeInvalid(c, "malformed from")
		return
	}
	to, err := timeParam(c, "to")
	if err != nil {
		rs.writeInvalid(c, "malformed to")
		return
	}

	q := &auv.EventQuery{
		Mid:       c.Query("mid"),
		EventType: c.Query("event_type"),
		From:      from,
		To:        to,
		Limit:     pageLimit(c),
	}
	if cur != nil {
		q.BeforeID = cur.ID
	}

	events, err := rs.Auv.Query.ListEvents(c.Request.Context(), q)
	if err != nil {
		rs.writeError(c, err)
		return
	}

	resp := gin.H{"items": common.Mapper(events, eventView)}
	if len(events) == q.Limit {
		last := events[len(events)-1]
		resp["next_cursor"] = encodeCursor(pageCursor{ID: last.ID, CreatedAt: last.CreatedAt})
	}
	c.JSON(http.StatusOK, resp)
}

func (rs *RestfulServer) HealthCheck(c *gin.Context) {
	var one int
	if err := rs.Auv.Db.Conn.WithContext(c.Request.Context()).Raw("SELECT 1").Scan(&one).Error; err != nil {
		rs.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "db": one == 1})
}

func (rs *RestfulServer) ResetDB(c *gin.Context) {
	if !rs.AdminResetEnabled {
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{"kind": auv.KindUnknownCommand, "message": "admin reset is disabled"},
		})
		return
	}
	if err := rs.Auv.Admin.ResetDB(c.Request.Context()); err != nil {
		rs.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "database reset complete"})
}
