package auv

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"auvlab.xyz/triton-com-server/pkg/common"
	"auvlab.xyz/triton-com-server/pkg/models"
)

type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// HeartbeatInput carries the fields the core inspects plus the raw body,
// which is persisted opaquely.
type HeartbeatInput struct {
	Mid         string
	Fw          string
	HbSeq       int64
	TsUtc       time.Time
	State       string
	Position    *Position
	Power       json.RawMessage
	Environment json.RawMessage
	Network     json.RawMessage
	Raw         []byte
}

type IssuedCommand struct {
	Seq      int64           `json:"seq"`
	Cmd      string          `json:"cmd"`
	Args     json.RawMessage `json:"args"`
	PlanHash string          `json:"plan_hash"`
}

type HeartbeatResult struct {
	Duplicate bool
	Command   *IssuedCommand
}

func issuedFromModel(cmd *models.Command) *IssuedCommand {
	return &IssuedCommand{
		Seq:      cmd.Seq,
		Cmd:      cmd.Cmd,
		Args:     json.RawMessage(cmd.Args),
		PlanHash: cmd.PlanHash,
	}
}

// heartbeat runs the whole ingest+dispatch step in one transaction: log the
// frame, roll up the device, and piggy-back the oldest QUEUED command on the
// response. A retransmitted (mid, hb_seq) re-returns whatever was dispensed
// at or after that hb_seq instead of advancing the queue.
func (a *AUV) heartbeat(ctx context.Context, in *HeartbeatInput) (*HeartbeatResult, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameAUVCore,
		zap.String(common.LoggerFieldAUVCategory, common.LoggerCategoryIngest),
	)

	result := &HeartbeatResult{}

	err := a.Db.Conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := a.now()

		hb := models.Heartbeat{
			Mid:        in.Mid,
			HbSeq:      in.HbSeq,
			TsUtc:      in.TsUtc,
			Payload:    datatypes.JSON(in.Raw),
			ReceivedAt: now,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "mid"}, {Name: "hb_seq"}},
			DoNothing: true,
		}).Create(&hb)
		if res.Error != nil {
			return res.Error
		}
		result.Duplicate = res.RowsAffected == 0

		if err := a.rollupDevice(tx, in, now); err != nil {
			return err
		}

		if result.Duplicate {
			// replay: re-return the command this (or a later) frame pulled
			var cmd models.Command
			err := tx.Where("mid = ? AND issued_hb_seq IS NOT NULL AND issued_hb_seq >= ?", in.Mid, in.HbSeq).
				Order("issued_hb_seq asc").
				First(&cmd).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			result.Command = issuedFromModel(&cmd)
			return nil
		}

		issued, err := a.dispense(ctx, tx, in, now)
		if err != nil {
			return err
		}
		result.Command = issued

		return logEvent(tx, in.Mid, models.EventHeartbeat, map[string]any{
			"hb_seq":           in.HbSeq,
			"state":            in.State,
			"command_returned": issued != nil,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Heartbeat processed",
		zap.String("mid", in.Mid),
		zap.Int64("hb_seq", in.HbSeq),
		zap.Bool("duplicate", result.Duplicate),
		zap.Bool("command_returned", result.Command != nil))

	return result, nil
}

// rollupDevice upserts the per-device snapshot. The DO UPDATE WHERE clause
// keeps the rollup monotone in hb_seq so a late frame cannot clobber a
// newer one.
func (a *AUV) rollupDevice(tx *gorm.DB, in *HeartbeatInput, now time.Time) error {
	var pos datatypes.JSON
	if in.Position != nil {
		blob, err := json.Marshal(in.Position)
		if err != nil {
			return err
		}
		pos = datatypes.JSON(blob)
	}

	seq := in.HbSeq
	dev := models.Device{
		Mid:        in.Mid,
		Fw:         in.Fw,
		LastState:  in.State,
		LastHbSeq:  &seq,
		LastSeenAt: now,
		LastPos:    pos,
		LastPwr:    datatypes.JSON(in.Power),
		LastEnv:    datatypes.JSON(in.Environment),
		LastNet:    datatypes.JSON(in.Network),
	}

	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "mid"}},
		DoUpdates: clause.Assignments(map[string]any{
			"fw":           dev.Fw,
			"last_state":   dev.LastState,
			"last_hb_seq":  seq,
			"last_seen_at": now,
			"last_pos":     dev.LastPos,
			"last_pwr":     dev.LastPwr,
			"last_env":     dev.LastEnv,
			"last_net":     dev.LastNet,
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "devices.last_hb_seq IS NULL OR devices.last_hb_seq <= ?", Vars: []any{seq}},
		}},
	}).Create(&dev).Error
}

// dispense claims the oldest QUEUED command for the device. Losing the
// guarded transition once means another worker grabbed it; try the next
// candidate, then give up for this cycle.
func (a *AUV) dispense(ctx context.Context, tx *gorm.DB, in *HeartbeatInput, now time.Time) (*IssuedCommand, error) {
	var afterSeq int64 = -1
	for attempt := 0; attempt < 2; attempt++ {
		var cmd models.Command
		err := tx.Where("mid = ? AND status = ? AND seq > ?", in.Mid, models.CommandQueued, afterSeq).
			Order("seq asc").
			First(&cmd).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		afterSeq = cmd.Seq
		won, err := a.transition(ctx, tx, &cmd, eventIssue, map[string]any{
			"issued_at":     now,
			"issued_hb_seq": in.HbSeq,
		})
		if err != nil {
			return nil, err
		}
		if !won {
			continue
		}

		if err := logEvent(tx, in.Mid, models.EventCmdIssued, map[string]any{
			"cmd_seq": cmd.Seq,
			"cmd":     cmd.Cmd,
			"hb_seq":  in.HbSeq,
		}); err != nil {
			return nil, err
		}
		return issuedFromModel(&cmd), nil
	}
	return nil, nil
}

type IIngestImpl struct {
	auv *AUV
}

func (ii *IIngestImpl) Heartbeat(ctx context.Context, in *HeartbeatInput) (*HeartbeatResult, error) {
	return ii.auv.heartbeat(ctx, in)
}

func (a *AUV) GetIIngest() IIngest {
	return &IIngestImpl{auv: a}
}
