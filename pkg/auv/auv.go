package auv

import (
	"context"
	"time"

	"github.com/paulmach/orb/geojson"

	"auvlab.xyz/triton-com-server/pkg/db"
	"auvlab.xyz/triton-com-server/pkg/models"
)

type IIngest interface {
	Heartbeat(ctx context.Context, in *HeartbeatInput) (*HeartbeatResult, error)
}

type ICommand interface {
	Enqueue(ctx context.Context, in *EnqueueInput) (*models.Command, error)
	Get(ctx context.Context, id int64) (*models.Command, error)
	List(ctx context.Context, q *CommandQuery) ([]models.Command, error)
	ExpireStale(ctx context.Context) (int, error)
}

type IDescent interface {
	Check(ctx context.Context, in *DescentCheckInput) (*DescentDecision, error)
}

type IAscent interface {
	Notify(ctx context.Context, in *AscentInput) (*models.Dive, error)
	GetDive(ctx context.Context, id int64) (*models.Dive, error)
	ListDives(ctx context.Context, q *DiveQuery) ([]models.Dive, error)
}

type ITrajectory interface {
	Build(ctx context.Context, q *TrajectoryQuery) (*geojson.FeatureCollection, error)
}

type IQuery interface {
	GetDevice(ctx context.Context, mid string) (*models.Device, error)
	ListDevices(ctx context.Context, q *DeviceQuery) ([]models.Device, error)
	ListHeartbeats(ctx context.Context, q *HeartbeatQuery) ([]models.Heartbeat, error)
	LatestTelemetry(ctx context.Context, mid string) (*Telemetry, error)
	ListEvents(ctx context.Context, q *EventQuery) ([]models.EventLog, error)
}

type IAdmin interface {
	ResetDB(ctx context.Context) error
}

type AUV struct {
	Db  db.DB
	Cfg Config

	// NowFn is the clock; tests override it to drive TTL and freshness
	// windows. nil means time.Now.
	NowFn func() time.Time

	Ingest     IIngest
	Command    ICommand
	Descent    IDescent
	Ascent     IAscent
	Trajectory ITrajectory
	Query      IQuery
	Admin      IAdmin
}

type ServiceOpts struct {
	Ingest     IIngest
	Command    ICommand
	Descent    IDescent
	Ascent     IAscent
	Trajectory ITrajectory
	Query      IQuery
	Admin      IAdmin
}

func (a *AUV) WithServices(opts ServiceOpts) *AUV {
	if opts.Ingest != nil {
		a.Ingest = opts.Ingest
	}
	if opts.Command != nil {
		a.Command = opts.Command
	}
	if opts.Descent != nil {
		a.Descent = opts.Descent
	}
	if opts.Ascent != nil {
		a.Ascent = opts.Ascent
	}
	if opts.Trajectory != nil {
		a.Trajectory = opts.Trajectory
	}
	if opts.Query != nil {
		a.Query = opts.Query
	}
	if opts.Admin != nil {
		a.Admin = opts.Admin
	}
	return a
}

// WithAllServices wires every real implementation; the common case for main
// and tests.
func (a *AUV) WithAllServices() *AUV {
	return a.WithServices(ServiceOpts{
		Ingest:     a.GetIIngest(),
		Command:    a.GetICommand(),
		Descent:    a.GetIDescent(),
		Ascent:     a.GetIAscent(),
		Trajectory: a.GetITrajectory(),
		Query:      a.GetIQuery(),
		Admin:      a.GetIAdmin(),
	})
}

func (a *AUV) now() time.Time {
	if a.NowFn != nil {
		return a.NowFn().UTC()
	}
	return time.Now().UTC()
}
