package auv

import (
	"context"
	"encoding/json"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"auvlab.xyz/triton-com-server/pkg/common"
	"auvlab.xyz/triton-com-server/pkg/models"
)

type TrajectoryQuery struct {
	Mid      string
	From     *time.Time
	To       *time.Time
	Detailed bool
	Sampling int
}

// clockSkewTolerance bounds how far the vehicle clock may drift from the
// server receive time before received_at becomes authoritative.
const clockSkewTolerance = time.Hour

const defaultTrajectoryWindow = 24 * time.Hour

// diveStates are the in-mission states; frames in them (or inside a dive's
// time window) belong to a dive segment rather than the surface track.
var diveStates = map[string]bool{
	"DESCENT_CHECK": true,
	"DESCENDING":    true,
	"AT_DEPTH":      true,
	"ASCENDING":     true,
	"DIVE":          true,
}

type frame struct {
	hbSeq   int64
	ts      time.Time
	skew    bool
	state   string
	pt      orb.Point
	depth   *float64
	payload map[string]any
}

type diveWindow struct {
	dive  *models.Dive
	start time.Time
	end   time.Time
}

type diveSummary struct {
	MaxDepthM *float64 `json:"max_depth_m"`
	DurationS *float64 `json:"duration_s"`
}

type segmentRun struct {
	dive    bool
	diveIdx int
	frames  []frame
}

// buildTrajectory derives the map-ready FeatureCollection from the
// heartbeat stream: surface LineStrings split around dives, one dive
// LineString plus start/end markers per dive, and the current position.
// The detailed variant additionally emits one Point per heartbeat.
func (a *AUV) buildTrajectory(ctx context.Context, q *TrajectoryQuery) (*geojson.FeatureCollection, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameAUVCore,
		zap.String(common.LoggerFieldAUVCategory, common.LoggerCategoryTraject),
	)

	if _, err := a.getDevice(ctx, q.Mid); err != nil {
		return nil, err
	}

	from, to := q.From, q.To
	if from == nil && to == nil {
		f := a.now().Add(-defaultTrajectoryWindow)
		from = &f
	}

	hq := a.Db.Conn.WithContext(ctx).Where("mid = ?", q.Mid)
	if from != nil {
		hq = hq.Where("ts_utc >= ?", *from)
	}
	if to != nil {
		hq = hq.Where("ts_utc <= ?", *to)
	}
	var hbs []models.Heartbeat
	if err := hq.Order("hb_seq asc").Find(&hbs).Error; err != nil {
		return nil, err
	}

	if q.Sampling > 1 {
		sampled := make([]models.Heartbeat, 0, len(hbs)/q.Sampling+1)
		for i := 0; i < len(hbs); i += q.Sampling {
			sampled = append(sampled, hbs[i])
		}
		hbs = sampled
	}

	var dives []models.Dive
	if err := a.Db.Conn.WithContext(ctx).
		Where("mid = ?", q.Mid).
		Order("created_at asc").
		Find(&dives).Error; err != nil {
		return nil, err
	}
	windows := buildWindows(dives)

	frames := make([]frame, 0, len(hbs))
	for i := range hbs {
		if f, ok := parseFrame(&hbs[i]); ok {
			frames = append(frames, f)
		}
	}

	fc := geojson.NewFeatureCollection()
	if len(frames) == 0 {
		return fc, nil
	}

	runs := mergeSingletons(segmentFrames(frames, windows))

	emitted := map[int]bool{}
	segIdx := 0
	for _, r := range runs {
		if !r.dive {
			a.emitSurface(fc, q.Mid, r, &segIdx)
			continue
		}
		if r.diveIdx >= 0 {
			emitted[r.diveIdx] = true
		}
		a.emitDive(fc, q.Mid, r, windows)
	}

	// dives the vehicle was underwater for leave a gap in the stream:
	// synthesize their geometry from the bracketing surface frames
	for i := range windows {
		if emitted[i] {
			continue
		}
		prev, next := bracketFrames(frames, windows[i])
		if prev == nil || next == nil {
			continue
		}
		a.emitDive(fc, q.Mid, segmentRun{dive: true, diveIdx: i, frames: []frame{*prev, *next}}, windows)
	}

	last := frames[len(frames)-1]
	cur := geojson.NewFeature(last.pt)
	cur.Properties = geojson.Properties{
		"type":      "current",
		"mid":       q.Mid,
		"timestamp": last.ts.Format(time.RFC3339),
		"state":     last.state,
	}
	if last.skew {
		cur.Properties["clock_skew"] = true
	}
	fc.Append(cur)

	if q.Detailed {
		for _, f := range frames {
			pf := geojson.NewFeature(f.pt)
			props := geojson.Properties{
				"hb_seq":    f.hbSeq,
				"timestamp": f.ts.Format(time.RFC3339),
				"state":     f.state,
			}
			if f.depth != nil {
				props["depth_m"] = *f.depth
			}
			for _, group := range []string{"position", "power", "environment", "network"} {
				if v, ok := f.payload[group]; ok {
					props[group] = v
				}
			}
			if f.skew {
				props["clock_skew"] = true
			}
			pf.Properties = props
			fc.Append(pf)
		}
	}

	logger.Info("Trajectory built",
		zap.String("mid", q.Mid),
		zap.Int("frames", len(frames)),
		zap.Int("features", len(fc.Features)))

	return fc, nil
}

func parseFrame(hb *models.Heartbeat) (frame, bool) {
	var payload map[string]any
	if err := json.Unmarshal(hb.Payload, &payload); err != nil {
		return frame{}, false
	}

	pos, ok := payload["position"].(map[string]any)
	if !ok {
		return frame{}, false
	}
	lat, latOk := pos["lat"].(float64)
	lon, lonOk := pos["lon"].(float64)
	if !latOk || !lonOk {
		return frame{}, false
	}
	if lat == 0.0 && lon == 0.0 {
		// firmware sentinel for "no fix yet"
		return frame{}, false
	}

	state, _ := payload["state"].(string)

	f := frame{
		hbSeq:   hb.HbSeq,
		ts:      hb.TsUtc,
		state:   state,
		pt:      orb.Point{lon, lat},
		payload: payload,
	}

	if env, ok := payload["environment"].(map[string]any); ok {
		if d, ok := env["depth_m"].(float64); ok {
			f.depth = &d
		}
	}

	if !hb.ReceivedAt.IsZero() {
		drift := hb.TsUtc.Sub(hb.ReceivedAt)
		if drift < 0 {
			drift = -drift
		}
		if drift > clockSkewTolerance {
			f.ts = hb.ReceivedAt
			f.skew = true
		}
	}

	return f, true
}

func buildWindows(dives []models.Dive) []diveWindow {
	var ws []diveWindow
	for i := range dives {
		d := &dives[i]
		if d.EndedAt == nil {
			continue
		}
		end := *d.EndedAt
		start := end
		if d.StartedAt != nil {
			start = *d.StartedAt
		} else {
			var s diveSummary
			if err := json.Unmarshal(d.Summary, &s); err == nil && s.DurationS != nil && *s.DurationS > 0 {
				start = end.Add(-time.Duration(*s.DurationS * float64(time.Second)))
			}
		}
		ws = append(ws, diveWindow{dive: d, start: start, end: end})
	}
	return ws
}

func windowIndex(windows []diveWindow, ts time.Time) int {
	for i, w := range windows {
		if !ts.Before(w.start) && !ts.After(w.end) {
			return i
		}
	}
	return -1
}

// straddlesWindow reports whether a dive lies entirely between two
// consecutive surface frames, which is where the surface track must split.
func straddlesWindow(windows []diveWindow, prev, next time.Time) bool {
	for _, w := range windows {
		if !prev.After(w.start) && !next.Before(w.end) {
			return true
		}
	}
	return false
}

func segmentFrames(frames []frame, windows []diveWindow) []segmentRun {
	var runs []segmentRun
	cur := segmentRun{diveIdx: -1}
	flush := func() {
		if len(cur.frames) > 0 {
			runs = append(runs, cur)
		}
	}

	for _, f := range frames {
		dIdx := windowIndex(windows, f.ts)
		isDive := dIdx >= 0 || diveStates[f.state]

		if isDive {
			if cur.dive && cur.diveIdx == dIdx {
				cur.frames = append(cur.frames, f)
				continue
			}
			flush()
			cur = segmentRun{dive: true, diveIdx: dIdx, frames: []frame{f}}
			continue
		}

		if cur.dive {
			flush()
			cur = segmentRun{diveIdx: -1}
		} else if len(cur.frames) > 0 {
			prev := cur.frames[len(cur.frames)-1]
			if straddlesWindow(windows, prev.ts, f.ts) {
				flush()
				cur = segmentRun{diveIdx: -1}
			}
		}
		cur.frames = append(cur.frames, f)
	}
	flush()
	return runs
}

// mergeSingletons folds a 1-frame run into its neighbor so a momentary state
// flap does not produce degenerate segments.
func mergeSingletons(runs []segmentRun) []segmentRun {
	if len(runs) < 2 {
		return runs
	}
	merged := make([]segmentRun, 0, len(runs))
	for i := 0; i < len(runs); i++ {
		r := runs[i]
		if len(r.frames) == 1 {
			if len(merged) > 0 {
				merged[len(merged)-1].frames = append(merged[len(merged)-1].frames, r.frames[0])
				continue
			}
			if i+1 < len(runs) {
				runs[i+1].frames = append([]frame{r.frames[0]}, runs[i+1].frames...)
				continue
			}
		}
		merged = append(merged, r)
	}
	return merged
}

func (a *AUV) emitSurface(fc *geojson.FeatureCollection, mid string, r segmentRun, segIdx *int) {
	if len(r.frames) < 2 {
		return
	}
	line := make(orb.LineString, 0, len(r.frames))
	for _, f := range r.frames {
		line = append(line, f.pt)
	}
	feat := geojson.NewFeature(line)
	feat.Properties = geojson.Properties{
		"type":          "trajectory",
		"mid":           mid,
		"segment_index": *segIdx,
		"start_time":    r.frames[0].ts.Format(time.RFC3339),
		"end_time":      r.frames[len(r.frames)-1].ts.Format(time.RFC3339),
	}
	fc.Append(feat)
	*segIdx++
}

func (a *AUV) emitDive(fc *geojson.FeatureCollection, mid string, r segmentRun, windows []diveWindow) {
	if len(r.frames) == 0 {
		return
	}

	props := geojson.Properties{"type": "dive", "mid": mid}
	var diveID any
	if r.diveIdx >= 0 {
		w := windows[r.diveIdx]
		diveID = w.dive.ID
		props["dive_id"] = w.dive.ID
		props["cmd_seq"] = w.dive.CmdSeq
		props["started_at"] = w.start.Format(time.RFC3339)
		var s diveSummary
		if err := json.Unmarshal(w.dive.Summary, &s); err == nil {
			if s.MaxDepthM != nil {
				props["max_depth_m"] = *s.MaxDepthM
			}
			if s.DurationS != nil {
				props["duration_s"] = *s.DurationS
			}
		}
	} else {
		// dive-state frames with no reconciled Dive row yet
		first, last := r.frames[0], r.frames[len(r.frames)-1]
		props["started_at"] = first.ts.Format(time.RFC3339)
		props["duration_s"] = last.ts.Sub(first.ts).Seconds()
		var maxDepth float64
		for _, f := range r.frames {
			if f.depth != nil && *f.depth > maxDepth {
				maxDepth = *f.depth
			}
		}
		props["max_depth_m"] = maxDepth
	}

	if len(r.frames) >= 2 {
		line := make(orb.LineString, 0, len(r.frames))
		for _, f := range r.frames {
			line = append(line, f.pt)
		}
		feat := geojson.NewFeature(line)
		feat.Properties = props
		fc.Append(feat)
	}

	first, last := r.frames[0], r.frames[len(r.frames)-1]
	for _, m := range []struct {
		kind string
		f    frame
	}{{"start", first}, {"end", last}} {
		marker := geojson.NewFeature(m.f.pt)
		marker.Properties = geojson.Properties{
			"type":        "dive_marker",
			"marker_type": m.kind,
			"mid":         mid,
			"timestamp":   m.f.ts.Format(time.RFC3339),
		}
		if diveID != nil {
			marker.Properties["dive_id"] = diveID
		}
		fc.Append(marker)
	}
}

// bracketFrames finds the last frame at or before the dive start and the
// first frame at or after its end.
func bracketFrames(frames []frame, w diveWindow) (*frame, *frame) {
	var prev, next *frame
	for i := range frames {
		f := &frames[i]
		if !f.ts.After(w.start) {
			prev = f
		}
		if next == nil && !f.ts.Before(w.end) {
			next = f
		}
	}
	return prev, next
}

type ITrajectoryImpl struct {
	auv *AUV
}

func (it *ITrajectoryImpl) Build(ctx context.Context, q *TrajectoryQuery) (*geojson.FeatureCollection, error) {
	return it.auv.buildTrajectory(ctx, q)
}

func (a *AUV) GetITrajectory() ITrajectory {
	return &ITrajectoryImpl{auv: a}
}
