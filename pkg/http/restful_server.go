package http

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"auvlab.xyz/triton-com-server/pkg/auv"
)

const (
	headerRequestID       = "X-Request-ID"
	defaultVehicleTimeout = 15 * time.Second
)

type RestfulServer struct {
	Server           *gin.Engine
	Auv              *auv.AUV
	RateLimiterStore *auv.RateLimiterStore

	// AdminResetEnabled gates /admin/reset-db; development only.
	AdminResetEnabled bool

	// VehicleTimeout caps vehicle-facing request handling; zero means the
	// 15 s default. The vehicle retries on its next heartbeat cadence.
	VehicleTimeout time.Duration
}

func (rs *RestfulServer) GetLimiter(mid string) *rate.Limiter {
	if rs.RateLimiterStore == nil {
		return nil
	} else {
		return rs.RateLimiterStore.GetLimiter(mid)
	}
}

func (rs *RestfulServer) CheckDeviceLimiter(mid string) bool {
	limiter := rs.GetLimiter(mid)
	if limiter == nil {
		return true
	}
	return limiter.Allow()
}

func (rs *RestfulServer) SetLimiter(mid string, midRate float64, midBurst int) {
	if rs.RateLimiterStore == nil {
		return
	}
	rs.RateLimiterStore.SetLimiter(mid, rate.Limit(midRate), midBurst)
}

// RequestID stamps every response with a correlation id, echoing the
// client's when present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(headerRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set("request_id", rid)
		c.Header(headerRequestID, rid)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString("request_id")
}

func (rs *RestfulServer) vehicleContext(c *gin.Context) (context.Context, context.CancelFunc) {
	timeout := rs.VehicleTimeout
	if timeout <= 0 {
		timeout = defaultVehicleTimeout
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}

func (rs *RestfulServer) Setup() {
	rs.Server.Use(RequestID())

	rs.Server.GET("/health", rs.HealthCheck)
	rs.Server.POST("/admin/reset-db", rs.ResetDB)

	// vehicle-facing tree
	rs.Server.POST("/hb", rs.PostHeartbeat)
	rs.Server.POST("/descent-check", rs.PostDescentCheck)
	rs.Server.POST("/ascent-notify", rs.PostAscentNotify)

	api := rs.Server.Group("/api/v1")
	{
		api.GET("/devices", rs.ListDevices)
		api.GET("/devices/:mid", rs.GetDevice)
		api.GET("/devices/:mid/status", rs.GetDeviceStatus)
		api.POST("/devices/:mid/limiter", rs.PostLimiter)
		api.POST("/commands", rs.PostCommand)
		api.GET("/commands", rs.ListCommands)
		api.GET("/commands/:id", rs.GetCommand)
		api.GET("/telemetry/latest/:mid", rs.GetLatestTelemetry)
		api.GET("/telemetry/heartbeats", rs.ListHeartbeats)
		api.GET("/telemetry/trajectory/:mid", rs.GetTrajectory)
		api.GET("/dives", rs.ListDives)
		api.GET("/dives/:id", rs.GetDive)
		api.GET("/events", rs.ListEvents)
	}
}
