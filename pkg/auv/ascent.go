package auv

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"auvlab.xyz/triton-com-server/pkg/common"
	"auvlab.xyz/triton-com-server/pkg/models"
)

type AscentInput struct {
	Mid     string
	CmdSeq  int64
	Ok      bool
	Summary map[string]any
	TsUtc   time.Time
	Raw     []byte
}

type DiveQuery struct {
	Mid      string
	From     *time.Time
	To       *time.Time
	BeforeID int64
	Limit    int
}

// ascentNotify closes out a dive attempt. The Dive row is recorded even when
// the command is not in EXECUTING (the descent check may never have reached
// us); such dives are flagged orphan and no transition is attempted.
func (a *AUV) ascentNotify(ctx context.Context, in *AscentInput) (*models.Dive, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameAUVCore,
		zap.String(common.LoggerFieldAUVCategory, common.LoggerCategoryAscent),
	)

	var dive models.Dive
	err := a.Db.Conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := a.now()

		var cmd models.Command
		found := true
		err := tx.Where("mid = ? AND seq = ?", in.Mid, in.CmdSeq).First(&cmd).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			found = false
		} else if err != nil {
			return err
		}

		orphan := !found || cmd.Status != models.CommandExecuting
		if !orphan {
			event := eventComplete
			if !in.Ok {
				event = eventFail
			}
			won, err := a.transition(ctx, tx, &cmd, event, map[string]any{"completed_at": now})
			if err != nil {
				return err
			}
			if !won {
				orphan = true
			}
		}

		summary := map[string]any{}
		for k, v := range in.Summary {
			summary[k] = v
		}
		if orphan {
			summary["orphan"] = true
		}
		blob, err := json.Marshal(summary)
		if err != nil {
			return err
		}

		endedAt := in.TsUtc
		var startedAt *time.Time
		if d, ok := summary["duration_s"].(float64); ok && d > 0 {
			s := endedAt.Add(-time.Duration(d * float64(time.Second)))
			startedAt = &s
		}

		// a retried ascent report updates the dive it already created
		var existing models.Dive
		err = tx.Where("mid = ? AND cmd_seq = ?", in.Mid, in.CmdSeq).First(&existing).Error
		switch {
		case err == nil:
			updates := map[string]any{
				"ok":       in.Ok,
				"summary":  datatypes.JSON(blob),
				"ended_at": endedAt,
			}
			if startedAt != nil {
				updates["started_at"] = *startedAt
			}
			if err := tx.Model(&existing).Updates(updates).Error; err != nil {
				return err
			}
			existing.Ok = in.Ok
			existing.Summary = datatypes.JSON(blob)
			existing.StartedAt = startedAt
			existing.EndedAt = &endedAt
			dive = existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			dive = models.Dive{
				Mid:       in.Mid,
				CmdSeq:    in.CmdSeq,
				Ok:        in.Ok,
				Summary:   datatypes.JSON(blob),
				StartedAt: startedAt,
				EndedAt:   &endedAt,
				CreatedAt: now,
			}
			if err := tx.Create(&dive).Error; err != nil {
				return err
			}
		default:
			return err
		}

		return logEvent(tx, in.Mid, models.EventAscentNotify, map[string]any{
			"cmd_seq": in.CmdSeq,
			"ok":      in.Ok,
			"orphan":  orphan,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Ascent notify processed",
		zap.String("mid", in.Mid),
		zap.Int64("cmd_seq", in.CmdSeq),
		zap.Bool("ok", in.Ok))

	return &dive, nil
}

func (a *AUV) getDive(ctx context.Context, id int64) (*models.Dive, error) {
	var dive models.Dive
	err := a.Db.Conn.WithContext(ctx).First(&dive, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewDomainError(KindUnknownCommand, "dive %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &dive, nil
}

func (a *AUV) listDives(ctx context.Context, q *DiveQuery) ([]models.Dive, error) {
	tx := a.Db.Conn.WithContext(ctx).Model(&models.Dive{})
	if q.Mid != "" {
		tx = tx.Where("mid = ?", q.Mid)
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

	var dives []models.Dive
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	err := tx.Order("id desc").Find(&dives).Error
	return dives, err
}

type IAscentImpl struct {
	auv *AUV
}

func (ia *IAscentImpl) Notify(ctx context.Context, in *AscentInput) (*models.Dive, error) {
	return ia.auv.ascentNotify(ctx, in)
}

func (ia *IAscentImpl) GetDive(ctx context.Context, id int64) (*models.Dive, error) {
	return ia.auv.getDive(ctx, id)
}

func (ia *IAscentImpl) ListDives(ctx context.Context, q *DiveQuery) ([]models.Dive, error) {
	return ia.auv.listDives(ctx, q)
}

func (a *AUV) GetIAscent() IAscent {
	return &IAscentImpl{auv: a}
}
