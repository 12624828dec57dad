// Command simulator drives a fleet of fake vehicles through the heartbeat,
// descent-check and ascent-notify cycle against a running server. Useful
// for load and soak testing.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	maxVehicles  = flag.Int("vehicles", 50, "number of simulated vehicles")
	cycles       = flag.Int("cycles", 20, "heartbeat cycles per vehicle")
	httpHostPort = flag.String("server", "127.0.0.1:1080", "server host:port")
)

var rnd *rand.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))

type heartbeatBody struct {
	Mid      string         `json:"mid"`
	Fw       string         `json:"fw"`
	HbSeq    int64          `json:"hb_seq"`
	TsUtc    time.Time      `json:"ts_utc"`
	State    string         `json:"state"`
	Position map[string]any `json:"position"`
	Power    map[string]any `json:"power"`
	Env      map[string]any `json:"environment"`
	Network  map[string]any `json:"network"`
}

type issuedCommand struct {
	Seq      int64           `json:"seq"`
	Cmd      string          `json:"cmd"`
	Args     json.RawMessage `json:"args"`
	PlanHash string          `json:"plan_hash"`
}

type heartbeatResponse struct {
	Ack     bool           `json:"ack"`
	Command *issuedCommand `json:"command"`
}

func postJSON(path string, body any, out any) error {
	blob, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := http.Post(fmt.Sprintf("http://%s%s", *httpHostPort, path), "application/json", bytes.NewReader(blob))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s returned %d", path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func runVehicle(mid string) {
	lat := 35.0 + rnd.Float64()
	lon := 139.5 + rnd.Float64()
	var checkSeq int64

	for seq := int64(1); seq <= int64(*cycles); seq++ {
		lat += (rnd.Float64() - 0.5) * 0.001
		lon += (rnd.Float64() - 0.5) * 0.001

		hb := heartbeatBody{
			Mid:      mid,
			Fw:       "sim-1.0.0",
			HbSeq:    seq,
			TsUtc:    time.Now().UTC(),
			State:    "SURFACE_WAIT",
			Position: map[string]any{"lat": lat, "lon": lon},
			Power:    map[string]any{"soc": 50 + rnd.Float64()*50},
			Env:      map[string]any{"depth_m": 0.0, "water_temp_c": 15 + rnd.Float64()*10},
			Network:  map[string]any{"rsrp_dbm": -80 - rnd.Intn(30)},
		}

		var hbResp heartbeatResponse
		if err := postJSON("/hb", hb, &hbResp); err != nil {
			log.Printf("%s hb %d failed: %v", mid, seq, err)
			continue
		}

		if hbResp.Command == nil {
			continue
		}

		checkSeq++
		check := map[string]any{
			"mid":       mid,
			"fw":        "sim-1.0.0",
			"ts_utc":    time.Now().UTC(),
			"check_seq": checkSeq,
			"cmd_seq":   hbResp.Command.Seq,
			"plan_hash": hbResp.Command.PlanHash,
		}
		var decision struct {
			Ok     bool   `json:"ok"`
			Reason string `json:"reason"`
		}
		if err := postJSON("/descent-check", check, &decision); err != nil {
			log.Printf("%s descent-check failed: %v", mid, err)
			continue
		}
		if !decision.Ok {
			log.Printf("%s descent rejected: %s", mid, decision.Reason)
			continue
		}

		var args struct {
			TargetDepthM float64 `json:"target_depth_m"`
			HoldAtDepthS float64 `json:"hold_at_depth_s"`
			Cycles       float64 `json:"cycles"`
		}
		_ = json.Unmarshal(hbResp.Command.Args, &args)

		notify := map[string]any{
			"mid":     mid,
			"fw":      "sim-1.0.0",
			"ts_utc":  time.Now().UTC(),
			"cmd_seq": hbResp.Command.Seq,
			"ok":      true,
			"summary": map[string]any{
				"max_depth_m": args.TargetDepthM,
				"duration_s":  args.HoldAtDepthS * args.Cycles,
			},
		}
		if err := postJSON("/ascent-notify", notify, nil); err != nil {
			log.Printf("%s ascent-notify failed: %v", mid, err)
		}
	}
}

func main() {
	flag.Parse()

	resp, err := http.Get(fmt.Sprintf("http://%s/health", *httpHostPort))
	if err != nil {
		log.Fatal("Failed to connect to HTTP server:", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatal("HTTP server not available")
	}

	fmt.Printf("http server verified\n")

	mids := make([]string, *maxVehicles)
	for i := range *maxVehicles {
		mids[i] = "SIM-" + uuid.NewString()[:8]
	}
	fmt.Printf("generated %v vehicle IDs\n", *maxVehicles)

	startTime := time.Now()
	wg := sync.WaitGroup{}
	for i := range *maxVehicles {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runVehicle(mids[i])
		}()
	}
	wg.Wait()
	usedTime := time.Since(startTime)

	total := float64(*maxVehicles * *cycles)
	fmt.Printf(
		"sent %v heartbeats: used time=%v seconds, throughput=%v action/second\n",
		int(total), usedTime.Seconds(), total/usedTime.Seconds(),
	)
}
