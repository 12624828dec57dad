package auv

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"auvlab.xyz/triton-com-server/pkg/common"
	"auvlab.xyz/triton-com-server/pkg/models"
)

type DescentCheckInput struct {
	Mid      string
	CheckSeq int64
	CmdSeq   int64
	PlanHash string
	TsUtc    time.Time
	Raw      []byte
}

type DescentDecision struct {
	Ok     bool
	Reason string
}

// descentCheck validates the pending dive and records the decision. Every
// outcome is authoritative: a rejected check also cancels the command so the
// vehicle's next heartbeat does not re-receive it.
func (a *AUV) descentCheck(ctx context.Context, in *DescentCheckInput) (*DescentDecision, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameAUVCore,
		zap.String(common.LoggerFieldAUVCategory, common.LoggerCategoryDescent),
	)

	var decision DescentDecision
	err := a.Db.Conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := a.now()

		// a retransmitted check_seq replays the recorded decision
		var existing models.DescentCheck
		err := tx.Where("mid = ? AND check_seq = ?", in.Mid, in.CheckSeq).First(&existing).Error
		if err == nil {
			decision = DescentDecision{Ok: existing.Ok, Reason: existing.Reason}
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var cmd models.Command
		found := true
		err = tx.Where("mid = ? AND seq = ?", in.Mid, in.CmdSeq).First(&cmd).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			found = false
		} else if err != nil {
			return err
		}

		ok := false
		reason := ""
		switch {
		case !found:
			reason = string(KindUnknownCommand)
		case cmd.Status != models.CommandIssued:
			reason = string(KindBadState)
		default:
			expected, err := PlanHashRaw(cmd.Cmd, cmd.Args)
			if err != nil {
				return err
			}
			switch {
			case expected != in.PlanHash:
				reason = string(KindPlanMismatch)
			case cmd.IssuedAt == nil || now.Sub(*cmd.IssuedAt) > a.Cfg.DescentFreshness:
				reason = string(KindStale)
			default:
				won, err := a.transition(ctx, tx, &cmd, eventAccept, map[string]any{"executing_at": now})
				if err != nil {
					return err
				}
				if won {
					ok = true
				} else {
					reason = string(KindBadState)
				}
			}
		}

		if !ok && found && cmd.Status == models.CommandIssued {
			won, err := a.transition(ctx, tx, &cmd, eventReject, map[string]any{"completed_at": now})
			if err != nil {
				return err
			}
			if won {
				if err := logEvent(tx, in.Mid, models.EventCmdCanceled, map[string]any{
					"cmd_seq": cmd.Seq,
					"reason":  reason,
				}); err != nil {
					return err
				}
			}
		}

		row := models.DescentCheck{
			Mid:       in.Mid,
			CheckSeq:  in.CheckSeq,
			CmdSeq:    in.CmdSeq,
			PlanHash:  in.PlanHash,
			Ok:        ok,
			Reason:    reason,
			Payload:   datatypes.JSON(in.Raw),
			CreatedAt: now,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "mid"}, {Name: "check_seq"}},
			DoNothing: true,
		}).Create(&row).Error; err != nil {
			return err
		}

		if err := logEvent(tx, in.Mid, models.EventDescentCheck, map[string]any{
			"check_seq": in.CheckSeq,
			"cmd_seq":   in.CmdSeq,
			"ok":        ok,
			"reason":    reason,
		}); err != nil {
			return err
		}

		decision = DescentDecision{Ok: ok, Reason: reason}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Descent check processed",
		zap.String("mid", in.Mid),
		zap.Int64("check_seq", in.CheckSeq),
		zap.Int64("cmd_seq", in.CmdSeq),
		zap.Bool("ok", decision.Ok),
		zap.String("reason", decision.Reason))

	return &decision, nil
}

type IDescentImpl struct {
	auv *AUV
}

func (id *IDescentImpl) Check(ctx context.Context, in *DescentCheckInput) (*DescentDecision, error) {
	return id.auv.descentCheck(ctx, in)
}

func (a *AUV) GetIDescent() IDescent {
	return &IDescentImpl{auv: a}
}
