package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"auvlab.xyz/triton-com-server/pkg/auv"
	"auvlab.xyz/triton-com-server/pkg/auv/mocks"
	"auvlab.xyz/triton-com-server/pkg/common"
	"auvlab.xyz/triton-com-server/pkg/db"
	"auvlab.xyz/triton-com-server/pkg/models"
	_ "auvlab.xyz/triton-com-server/pkg/testing"
)

func setupTestServer() *RestfulServer {
	common.SetTestLoggerNop()

	auvCore := auv.AUV{
		Db:  *db.GetInstance(db.UseMemorySqliteDialector()),
		Cfg: auv.DefaultConfig(),
	}
	auvCore.WithAllServices()

	rs := &RestfulServer{
		Server: gin.Default(),
		Auv:    &auvCore,
		// default we use no limiter, if need, later assign rs.RateLimiterStore = auv.NewRateLimiterStore(...)
		AdminResetEnabled: true,
	}

	rs.Setup()

	return rs
}

func doJSON(rs *RestfulServer, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		blob, _ := json.Marshal(body)
		reader = bytes.NewReader(blob)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	return w
}

func heartbeatBody(mid string, seq int64, state string) map[string]any {
	return map[string]any{
		"mid":         mid,
		"fw":          "tr4-fw-1.0.0",
		"hb_seq":      seq,
		"ts_utc":      time.Now().UTC().Format(time.RFC3339),
		"state":       state,
		"position":    map[string]any{"lat": 35.1, "lon": 139.6},
		"power":       map[string]any{"soc": 77.5},
		"environment": map[string]any{"depth_m": 0.0, "water_temp_c": 18.2},
		"network":     map[string]any{"rsrp_dbm": -95},
	}
}

func commandBody(mid string) map[string]any {
	return map[string]any{
		"mid": mid,
		"cmd": "RUN_DIVE",
		"args": map[string]any{
			"target_depth_m":  10.0,
			"hold_at_depth_s": 30,
			"cycles":          1,
		},
	}
}

func TestHealthCheck(t *testing.T) {
	rs := setupTestServer()

	w := doJSON(rs, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, true, resp["db"])
}

func TestRequestIDHeader(t *testing.T) {
	rs := setupTestServer()

	w := doJSON(rs, "GET", "/health", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	// a client-supplied id is echoed back
	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	rs.Server.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestDispatchAndCompleteFlow(t *testing.T) {
	rs := setupTestServer()
	mid := uuid.NewString()

	// first contact creates the device
	w := doJSON(rs, "POST", "/hb", heartbeatBody(mid, 1, "SURFACE_WAIT"))
	require.Equal(t, http.StatusOK, w.Code)

	// operator queues RUN_DIVE
	w = doJSON(rs, "POST", "/api/v1/commands", commandBody(mid))
	require.Equal(t, http.StatusCreated, w.Code)
	var created CommandView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, int64(1), created.Seq)

	// next heartbeat pulls it
	w = doJSON(rs, "POST", "/hb", heartbeatBody(mid, 2, "SURFACE_WAIT"))
	require.Equal(t, http.StatusOK, w.Code)
	var hbResp HeartbeatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hbResp))
	require.NotNil(t, hbResp.Command)
	assert.Equal(t, int64(1), hbResp.Command.Seq)
	assert.Equal(t, "RUN_DIVE", hbResp.Command.Cmd)
	require.NotEmpty(t, hbResp.Command.PlanHash)

	// descent check with the matching plan hash
	w = doJSON(rs, "POST", "/descent-check", map[string]any{
		"mid":       mid,
		"fw":        "tr4-fw-1.0.0",
		"ts_utc":    time.Now().UTC().Format(time.RFC3339),
		"check_seq": 1,
		"cmd_seq":   hbResp.Command.Seq,
		"plan_hash": hbResp.Command.PlanHash,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var decision DescentCheckResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decision))
	assert.True(t, decision.Ok)

	// surface again, report success
	w = doJSON(rs, "POST", "/ascent-notify", map[string]any{
		"mid":     mid,
		"fw":      "tr4-fw-1.0.0",
		"ts_utc":  time.Now().UTC().Format(time.RFC3339),
		"cmd_seq": hbResp.Command.Seq,
		"ok":      true,
		"summary": map[string]any{"max_depth_m": 10.4, "duration_s": 31.0},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ack":true}`, w.Body.String())

	// command landed in COMPLETED, dive recorded
	w = doJSON(rs, "GET", fmt.Sprintf("/api/v1/commands/%d", created.CommandID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var final CommandView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &final))
	assert.Equal(t, string(models.CommandCompleted), final.Status)

	w = doJSON(rs, "GET", "/api/v1/dives?mid="+mid, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dives struct {
		Items []DiveView `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dives))
	require.Len(t, dives.Items, 1)
	assert.True(t, dives.Items[0].Ok)
}

func TestPlanTamperCancels(t *testing.T) {
	rs := setupTestServer()
	mid := uuid.NewString()

	doJSON(rs, "POST", "/hb", heartbeatBody(mid, 1, "SURFACE_WAIT"))
	w := doJSON(rs, "POST", "/api/v1/commands", commandBody(mid))
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(rs, "POST", "/hb", heartbeatBody(mid, 2, "SURFACE_WAIT"))
	var hbResp HeartbeatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hbResp))
	require.NotNil(t, hbResp.Command)

	w = doJSON(rs, "POST", "/descent-check", map[string]any{
		"mid":       mid,
		"ts_utc":    time.Now().UTC().Format(time.RFC3339),
		"check_seq": 1,
		"cmd_seq":   hbResp.Command.Seq,
		"plan_hash": "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var decision DescentCheckResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decision))
	assert.False(t, decision.Ok)
	assert.Equal(t, "PLAN_MISMATCH", decision.Reason)

	// subsequent heartbeats must not re-receive the command
	w = doJSON(rs, "POST", "/hb", heartbeatBody(mid, 3, "SURFACE_WAIT"))
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hbResp))
	assert.Nil(t, hbResp.Command)
}

func TestDuplicateHeartbeatRepeatsCommand(t *testing.T) {
	rs := setupTestServer()
	mid := uuid.NewString()

	doJSON(rs, "POST", "/hb", heartbeatBody(mid, 1, "SURFACE_WAIT"))
	w := doJSON(rs, "POST", "/api/v1/commands", commandBody(mid))
	require.Equal(t, http.StatusCreated, w.Code)

	body := heartbeatBody(mid, 7, "SURFACE_WAIT")
	w = doJSON(rs, "POST", "/hb", body)
	var first HeartbeatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	require.NotNil(t, first.Command)

	// the firmware retransmits the identical frame
	w = doJSON(rs, "POST", "/hb", body)
	var second HeartbeatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	require.NotNil(t, second.Command)
	assert.Equal(t, first.Command.Seq, second.Command.Seq)
}

func TestEnqueueConflict(t *testing.T) {
	rs := setupTestServer()
	mid := uuid.NewString()

	doJSON(rs, "POST", "/hb", heartbeatBody(mid, 1, "SURFACE_WAIT"))

	w := doJSON(rs, "POST", "/api/v1/commands", commandBody(mid))
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(rs, "POST", "/api/v1/commands", commandBody(mid))
	assert.Equal(t, http.StatusConflict, w.Code)

	var resp map[string]map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(auv.KindConflict), resp["error"]["kind"])
}

func TestEnqueueUnknownDevice(t *testing.T) {
	rs := setupTestServer()

	w := doJSON(rs, "POST", "/api/v1/commands", commandBody(uuid.NewString()))
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp map[string]map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(auv.KindUnknownDevice), resp["error"]["kind"])
}

func TestVehicleEndpoints_EdgeCases(t *testing.T) {
	rs := setupTestServer()

	{
		// empty payload should be rejected
		w := doJSON(rs, "POST", "/hb", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	{
		req := httptest.NewRequest("POST", "/hb", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		rs.Server.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	{
		w := doJSON(rs, "POST", "/descent-check", map[string]any{"mid": "x"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	{
		// unsupported command kind
		mid := uuid.NewString()
		doJSON(rs, "POST", "/hb", heartbeatBody(mid, 1, "SURFACE_WAIT"))
		body := commandBody(mid)
		body["cmd"] = "SELF_DESTRUCT"
		w := doJSON(rs, "POST", "/api/v1/commands", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}

func TestWebReads(t *testing.T) {
	rs := setupTestServer()
	mid := uuid.NewString()

	doJSON(rs, "POST", "/hb", heartbeatBody(mid, 1, "SURFACE_WAIT"))
	doJSON(rs, "POST", "/hb", heartbeatBody(mid, 2, "SURFACE_WAIT"))

	{
		w := doJSON(rs, "GET", "/api/v1/devices/"+mid, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var dev DeviceView
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dev))
		assert.Equal(t, mid, dev.Mid)
		assert.True(t, dev.Online)
	}

	{
		w := doJSON(rs, "GET", "/api/v1/devices/"+mid+"/status", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var status map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
		assert.Equal(t, true, status["online"])
		assert.EqualValues(t, 2, status["last_hb_seq"])
	}

	{
		w := doJSON(rs, "GET", "/api/v1/telemetry/latest/"+mid, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var tele auv.Telemetry
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tele))
		require.NotNil(t, tele.HbSeq)
		assert.Equal(t, int64(2), *tele.HbSeq)
		assert.Equal(t, "SURFACE_WAIT", tele.State)
	}

	{
		w := doJSON(rs, "GET", "/api/v1/telemetry/heartbeats?mid="+mid, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Items []HeartbeatView `json:"items"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Items, 2)
	}

	{
		w := doJSON(rs, "GET", "/api/v1/telemetry/heartbeats", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "mid is required")
	}

	{
		w := doJSON(rs, "GET", "/api/v1/telemetry/trajectory/"+mid+"?format=geojson", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	{
		w := doJSON(rs, "GET", "/api/v1/telemetry/trajectory/"+mid+"?format=kml", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	{
		w := doJSON(rs, "GET", "/api/v1/telemetry/trajectory/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	}
}

func TestEventsPaginationCursor(t *testing.T) {
	rs := setupTestServer()
	mid := uuid.NewString()

	for seq := int64(1); seq <= 3; seq++ {
		doJSON(rs, "POST", "/hb", heartbeatBody(mid, seq, "SURFACE_WAIT"))
	}

	w := doJSON(rs, "GET", "/api/v1/events?mid="+mid+"&limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page1 struct {
		Items      []EventView `json:"items"`
		NextCursor string      `json:"next_cursor"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page1))
	require.Len(t, page1.Items, 2)
	require.NotEmpty(t, page1.NextCursor)

	w = doJSON(rs, "GET", "/api/v1/events?mid="+mid+"&limit=2&cursor="+page1.NextCursor, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page2 struct {
		Items []EventView `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page2))
	require.NotEmpty(t, page2.Items)

	// cursor pages must not overlap
	for _, ev := range page2.Items {
		for _, prev := range page1.Items {
			assert.NotEqual(t, prev.ID, ev.ID)
		}
	}

	w = doJSON(rs, "GET", "/api/v1/events?cursor=!!!", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminResetGating(t *testing.T) {
	rs := setupTestServer()
	mid := uuid.NewString()
	doJSON(rs, "POST", "/hb", heartbeatBody(mid, 1, "SURFACE_WAIT"))

	rs.AdminResetEnabled = false
	w := doJSON(rs, "POST", "/admin/reset-db", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// still there
	w = doJSON(rs, "GET", "/api/v1/devices/"+mid, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	rs.AdminResetEnabled = true
	w = doJSON(rs, "POST", "/admin/reset-db", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(rs, "GET", "/api/v1/devices/"+mid, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServiceErrorsMapToUnavailable(t *testing.T) {
	rs := setupTestServer()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockIQuery := mocks.NewMockIQuery(ctrl)
	rs.Auv.Query = mockIQuery
	mockIQuery.EXPECT().
		ListDevices(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("just causing error")).
		Times(1)

	w := doJSON(rs, "GET", "/api/v1/devices", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp map[string]map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(auv.KindUnavailable), resp["error"]["kind"])
	assert.Equal(t, "database unavailable", resp["error"]["message"])
}

func setupTestServerWithLimiter(limiter *auv.RateLimiterStore) *RestfulServer {
	rs := setupTestServer()
	rs.RateLimiterStore = limiter
	return rs
}

func TestVehicleRateLimiter(t *testing.T) {
	rs := setupTestServerWithLimiter(auv.NewRateLimiterStore(2, 2))
	mid := uuid.NewString()

	// burst of 2 passes, the third frame in the same instant is shed
	for i := int64(1); i <= 3; i++ {
		w := doJSON(rs, "POST", "/hb", heartbeatBody(mid, i, "SURFACE_WAIT"))
		if i <= 2 {
			require.Equal(t, http.StatusOK, w.Code, "request %d should be allowed", i)
		} else {
			require.Equal(t, http.StatusTooManyRequests, w.Code, "request %d should be rate limited", i)
		}
	}

	// tuning the device bucket over the web API lifts the limit
	w := doJSON(rs, "POST", "/api/v1/devices/"+mid+"/limiter", LimiterRequest{Rate: 100, Burst: 10})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(rs, "POST", "/hb", heartbeatBody(mid, 4, "SURFACE_WAIT"))
	require.Equal(t, http.StatusOK, w.Code)
}
