package auv

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"auvlab.xyz/triton-com-server/pkg/models"
)

type DeviceQuery struct {
	State    string
	AfterMid string
	Limit    int
}

type HeartbeatQuery struct {
	Mid      string
	From     *time.Time
	To       *time.Time
	BeforeID int64
	Limit    int
}

type EventQuery struct {
	Mid       string
	EventType string
	From      *time.Time
	To        *time.Time
	BeforeID  int64
	Limit     int
}

// Telemetry is the latest-frame projection served to the UI.
type Telemetry struct {
	Mid         string          `json:"mid"`
	HbSeq       *int64          `json:"hb_seq"`
	TsUtc       time.Time       `json:"ts_utc"`
	State       string          `json:"state"`
	Position    json.RawMessage `json:"position,omitempty"`
	Power       json.RawMessage `json:"power,omitempty"`
	Environment json.RawMessage `json:"environment,omitempty"`
	Network     json.RawMessage `json:"network,omitempty"`
}

func (a *AUV) getDevice(ctx context.Context, mid string) (*models.Device, error) {
	var dev models.Device
	err := a.Db.Conn.WithContext(ctx).First(&dev, "mid = ?", mid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewDomainError(KindUnknownDevice, "device %s not found", mid)
	}
	if err != nil {
		return nil, err
	}
	return &dev, nil
}

func (a *AUV) listDevices(ctx context.Context, q *DeviceQuery) ([]models.Device, error) {
	tx := a.Db.Conn.WithContext(ctx).Model(&models.Device{})
	if q.State != "" {
		tx = tx.Where("last_state = ?", q.State)
	}
	if q.AfterMid != "" {
		tx = tx.Where("mid > ?", q.AfterMid)
	}

	var devices []models.Device
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	err := tx.Order("mid asc").Find(&devices).Error
	return devices, err
}

func (a *AUV) listHeartbeats(ctx context.Context, q *HeartbeatQuery) ([]models.Heartbeat, error) {
	tx := a.Db.Conn.WithContext(ctx).Model(&models.Heartbeat{}).Where("mid = ?", q.Mid)
	if q.From != nil {
		tx = tx.Where("ts_utc >= ?", *q.From)
	}
	if q.To != nil {
		tx = tx.Where("ts_utc <= ?", *q.To)
	}
	if q.BeforeID > 0 {
		tx = tx.Where("id < ?", q.BeforeID)
	}

	var hbs []models.Heartbeat
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	err := tx.Order("id desc").Find(&hbs).Error
	return hbs, err
}

// payloadGroups are the nested heartbeat groups the read side projects back
// out of the opaque payload blob.
type payloadGroups struct {
	State       string          `json:"state"`
	Position    json.RawMessage `json:"position"`
	Power       json.RawMessage `json:"power"`
	Environment json.RawMessage `json:"environment"`
	Network     json.RawMessage `json:"network"`
}

// latestTelemetry prefers the newest heartbeat payload; a device that has a
// rollup but no retained heartbeats falls back to the rollup snapshots.
func (a *AUV) latestTelemetry(ctx context.Context, mid string) (*Telemetry, error) {
	dev, err := a.getDevice(ctx, mid)
	if err != nil {
		return nil, err
	}

	var hb models.Heartbeat
	err = a.Db.Conn.WithContext(ctx).
		Where("mid = ?", mid).
		Order("hb_seq desc").
		First(&hb).Error
	if err == nil {
		var groups payloadGroups
		if err := json.Unmarshal(hb.Payload, &groups); err != nil {
			return nil, err
		}
		seq := hb.HbSeq
		return &Telemetry{
			Mid:         mid,
			HbSeq:       &seq,
			TsUtc:       hb.TsUtc,
			State:       groups.State,
			Position:    groups.Position,
			Power:       groups.Power,
			Environment: groups.Environment,
			Network:     groups.Network,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return &Telemetry{
		Mid:         mid,
		HbSeq:       dev.LastHbSeq,
		TsUtc:       dev.LastSeenAt,
		State:       dev.LastState,
		Position:    json.RawMessage(dev.LastPos),
		Power:       json.RawMessage(dev.LastPwr),
		Environment: json.RawMessage(dev.LastEnv),
		Network:     json.RawMessage(dev.LastNet),
	}, nil
}

func (a *AUV) listEvents(ctx context.Context, q *EventQuery) ([]models.EventLog, error) {
	tx := a.Db.Conn.WithContext(ctx).Model(&models.EventLog{})
	if q.Mid != "" {
		tx = tx.Where("mid = ?", q.Mid)
	}
	if q.EventType != "" {
		tx = tx.Where("event_type = ?", q.EventType)
	}
	if q.From != nil {
		tx = tx.Where("created_at >= ?", *q.From)
	}
	if q.To != nil {
		tx = tx.Where("created_at <= ?", *q.To)
	}
	if q.BeforeID > 0 {
		tx = tx.Where("id < ?", q.BeforeID)
	}

	var events []models.EventLog
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	err := tx.Order("id desc").Find(&events).Error
	return events, err
}

type IQueryImpl struct {
	auv *AUV
}

func (iq *IQueryImpl) GetDevice(ctx context.Context, mid string) (*models.Device, error) {
	return iq.auv.getDevice(ctx, mid)
}

func (iq *IQueryImpl) ListDevices(ctx context.Context, q *DeviceQuery) ([]models.Device, error) {
	return iq.auv.listDevices(ctx, q)
}

func (iq *IQueryImpl) ListHeartbeats(ctx context.Context, q *HeartbeatQuery) ([]models.Heartbeat, error) {
	return iq.auv.listHeartbeats(ctx, q)
}

func (iq *IQueryImpl) LatestTelemetry(ctx context.Context, mid string) (*Telemetry, error) {
	return iq.auv.latestTelemetry(ctx, mid)
}

func (iq *IQueryImpl) ListEvents(ctx context.Context, q *EventQuery) ([]models.EventLog, error) {
	return iq.auv.listEvents(ctx, q)
}

func (a *AUV) GetIQuery() IQuery {
	return &IQueryImpl{auv: a}
}
