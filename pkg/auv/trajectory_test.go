package auv

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auvlab.xyz/triton-com-server/pkg/common"
	_ "auvlab.xyz/triton-com-server/pkg/testing"
)

func featureTypes(fc *geojson.FeatureCollection) map[string]int {
	return common.Reducer(fc.Features, func(acc map[string]int, f *geojson.Feature) map[string]int {
		if t, ok := f.Properties["type"].(string); ok {
			acc[t]++
		} else {
			acc["_point"]++
		}
		return acc
	}, map[string]int{})
}

// seedDiveTrack feeds 20 frames straddling one dive: 8 surface frames, 4
// dive frames, 8 surface frames, then one more surface frame that pulls the
// command (21 in all), and the reconciled Dive row covering the middle
// window.
func seedDiveTrack(t *testing.T, a *AUV, mid string) time.Time {
	t.Helper()
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)

	seq := int64(0)
	emit := func(state string, depth float64) {
		seq++
		ts := base.Add(time.Duration(seq) * time.Minute)
		lat := 35.1 + float64(seq)*0.0005
		lon := 139.6 + float64(seq)*0.0005
		_, err := a.Ingest.Heartbeat(ctx, hbInput(mid, seq, ts, state, lat, lon, depth))
		require.NoError(t, err)
	}

	for i := 0; i < 8; i++ {
		emit("SURFACE_WAIT", 0)
	}
	for i := 0; i < 4; i++ {
		emit("DESCENDING", 5+float64(i)*2)
	}
	for i := 0; i < 8; i++ {
		emit("SURFACE_WAIT", 0)
	}

	// reconcile a dive covering frames 9..12: enqueue, pull it on the next
	// heartbeat, accept the descent check, then report the ascent
	cmd, err := a.Command.Enqueue(ctx, &EnqueueInput{Mid: mid, Cmd: "RUN_DIVE", Args: runDiveArgs(), IssuedBy: "test"})
	require.NoError(t, err)

	emit("SURFACE_WAIT", 0)

	_, err = a.Descent.Check(ctx, &DescentCheckInput{
		Mid: mid, CheckSeq: 1, CmdSeq: cmd.Seq, PlanHash: cmd.PlanHash,
		TsUtc: base, Raw: []byte(`{}`),
	})
	require.NoError(t, err)

	ended := base.Add(12*time.Minute + 30*time.Second)
	_, err = a.Ascent.Notify(ctx, &AscentInput{
		Mid:    mid,
		CmdSeq: cmd.Seq,
		Ok:     true,
		Summary: map[string]any{
			"max_depth_m": 11.0,
			"duration_s":  (4*60 + 15.0),
		},
		TsUtc: ended,
		Raw:   []byte(`{}`),
	})
	require.NoError(t, err)

	return base
}

func TestTrajectorySegmentation(t *testing.T) {
	a := newTestAUV(t)
	mid := uuid.NewString()
	seedDiveTrack(t, a, mid)

	fc, err := a.Trajectory.Build(context.Background(), &TrajectoryQuery{Mid: mid})
	require.NoError(t, err)

	counts := featureTypes(fc)
	assert.Equal(t, 2, counts["trajectory"], "one surface segment before and one after the dive")
	assert.Equal(t, 1, counts["dive"])
	assert.Equal(t, 2, counts["dive_marker"])
	assert.Equal(t, 1, counts["current"])

	for _, f := range fc.Features {
		if f.Properties["type"] == "dive_marker" {
			assert.Contains(t, []any{"start", "end"}, f.Properties["marker_type"])
			assert.NotNil(t, f.Properties["dive_id"])
		}
		if f.Properties["type"] == "dive" {
			assert.NotNil(t, f.Properties["dive_id"])
			assert.EqualValues(t, 11.0, f.Properties["max_depth_m"])
		}
	}
}

func TestTrajectoryDetailedEmitsFramePoints(t *testing.T) {
	a := newTestAUV(t)
	mid := uuid.NewString()
	seedDiveTrack(t, a, mid)

	fc, err := a.Trajectory.Build(context.Background(), &TrajectoryQuery{Mid: mid, Detailed: true})
	require.NoError(t, err)

	counts := featureTypes(fc)
	// seedDiveTrack adds a 21st frame to pull the command: 21 valid frames total
	assert.Equal(t, 21, counts["_point"])
	assert.Equal(t, 1, counts["current"])
}

func TestTrajectoryDropsSentinelPositions(t *testing.T) {
	a := newTestAUV(t)
	ctx := context.Background()
	mid := uuid.NewString()

	base := time.Now().UTC().Add(-time.Hour)
	_, err := a.Ingest.Heartbeat(ctx, hbInput(mid, 1, base, "SURFACE_WAIT", 0, 0, 0))
	require.NoError(t, err)
	_, err = a.Ingest.Heartbeat(ctx, hbInput(mid, 2, base.Add(time.Minute), "SURFACE_WAIT", 35.1, 139.6, 0))
	require.NoError(t, err)
	_, err = a.Ingest.Heartbeat(ctx, hbInput(mid, 3, base.Add(2*time.Minute), "SURFACE_WAIT", 35.2, 139.7, 0))
	require.NoError(t, err)

	fc, err := a.Trajectory.Build(ctx, &TrajectoryQuery{Mid: mid, Detailed: true})
	require.NoError(t, err)

	counts := featureTypes(fc)
	assert.Equal(t, 2, counts["_point"], "the (0,0) sentinel frame is dropped")
	assert.Equal(t, 1, counts["trajectory"])
}

func TestTrajectoryUnknownDevice(t *testing.T) {
	a := newTestAUV(t)

	_, err := a.Trajectory.Build(context.Background(), &TrajectoryQuery{Mid: uuid.NewString()})
	require.Error(t, err)
	assert.Equal(t, KindUnknownDevice, KindOf(err))
}

func TestTrajectoryEmptyWindow(t *testing.T) {
	a := newTestAUV(t)
	ctx := context.Background()
	mid := uuid.NewString()
	seedDevice(t, a, mid)

	from := time.Now().UTC().Add(-48 * time.Hour)
	to := time.Now().UTC().Add(-47 * time.Hour)
	fc, err := a.Trajectory.Build(ctx, &TrajectoryQuery{Mid: mid, From: &from, To: &to})
	require.NoError(t, err)
	assert.Len(t, fc.Features, 0)
}

func TestTrajectoryClockSkew(t *testing.T) {
	a := newTestAUV(t)
	ctx := context.Background()
	mid := uuid.NewString()

	// vehicle clock claims two days in the future
	skewed := time.Now().UTC().Add(48 * time.Hour)
	_, err := a.Ingest.Heartbeat(ctx, hbInput(mid, 1, skewed, "SURFACE_WAIT", 35.1, 139.6, 0))
	require.NoError(t, err)

	from := time.Now().UTC().Add(-time.Hour)
	to := time.Now().UTC().Add(72 * time.Hour)
	fc, err := a.Trajectory.Build(ctx, &TrajectoryQuery{Mid: mid, From: &from, To: &to})
	require.NoError(t, err)

	var current *geojson.Feature
	for _, f := range fc.Features {
		if f.Properties["type"] == "current" {
			current = f
		}
	}
	require.NotNil(t, current)
	assert.Equal(t, true, current.Properties["clock_skew"])
}
