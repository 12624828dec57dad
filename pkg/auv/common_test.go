package auv

import (
	"encoding/json"
	"testing"
	"time"

	"auvlab.xyz/triton-com-server/pkg/common"
	"auvlab.xyz/triton-com-server/pkg/db"
)

func newTestAUV(t *testing.T) *AUV {
	t.Helper()
	common.SetTestLoggerNop()

	dbInstance := db.GetInstance(db.UseMemorySqliteDialector())
	a := &AUV{
		Db:  *dbInstance,
		Cfg: DefaultConfig(),
	}
	a.WithAllServices()
	return a
}

// hbInput builds a heartbeat the way the firmware would send it, raw body
// included.
func hbInput(mid string, seq int64, ts time.Time, state string, lat, lon, depth float64) *HeartbeatInput {
	payload := map[string]any{
		"mid":    mid,
		"fw":     "tr4-fw-1.0.0",
		"hb_seq": seq,
		"ts_utc": ts.Format(time.RFC3339),
		"state":  state,
		"position": map[string]any{
			"lat": lat,
			"lon": lon,
		},
		"power": map[string]any{
			"soc": 80.0,
		},
		"environment": map[string]any{
			"depth_m":      depth,
			"water_temp_c": 18.5,
		},
		"network": map[string]any{
			"rsrp_dbm": -92,
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}

	in := &HeartbeatInput{
		Mid:   mid,
		Fw:    "tr4-fw-1.0.0",
		HbSeq: seq,
		TsUtc: ts,
		State: state,
		Raw:   raw,
	}
	if lat != 0 || lon != 0 {
		in.Position = &Position{Lat: lat, Lon: lon}
	}
	return in
}

func runDiveArgs() map[string]any {
	return map[string]any{
		"target_depth_m":  10.0,
		"hold_at_depth_s": 30.0,
		"cycles":          1.0,
	}
}
