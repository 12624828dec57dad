package auv

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"auvlab.xyz/triton-com-server/pkg/common"
	"auvlab.xyz/triton-com-server/pkg/models"
)

type EnqueueInput struct {
	Mid      string
	Cmd      string
	Args     map[string]any
	IssuedBy string
}

type CommandQuery struct {
	Mid      string
	Status   models.CommandStatus
	From     *time.Time
	To       *time.Time
	BeforeID int64
	Limit    int
}

var inflightStatuses = []models.CommandStatus{
	models.CommandQueued,
	models.CommandIssued,
	models.CommandExecuting,
}

// enqueue allocates the per-device seq and inserts the command, holding the
// single in-flight rule inside the same transaction.
func (a *AUV) enqueue(ctx context.Context, in *EnqueueInput) (*models.Command, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameAUVCore,
		zap.String(common.LoggerFieldAUVCategory, common.LoggerCategoryCommand),
	)

	var out models.Command
	err := a.Db.Conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dev models.Device
		if err := tx.First(&dev, "mid = ?", in.Mid).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewDomainError(KindUnknownDevice, "device %s not found", in.Mid)
			}
			return err
		}

		var inflight int64
		if err := tx.Model(&models.Command{}).
			Where("mid = ? AND status IN ?", in.Mid, inflightStatuses).
			Count(&inflight).Error; err != nil {
			return err
		}
		if inflight > 0 {
			return NewDomainError(KindConflict, "device %s already has a command in flight", in.Mid)
		}

		var maxSeq sql.NullInt64
		if err := tx.Model(&models.Command{}).
			Where("mid = ?", in.Mid).
			Select("max(seq)").
			Scan(&maxSeq).Error; err != nil {
			return err
		}

		argsBlob, err := json.Marshal(in.Args)
		if err != nil {
			return err
		}

		now := a.now()
		out = models.Command{
			Mid:       in.Mid,
			Seq:       maxSeq.Int64 + 1,
			Cmd:       in.Cmd,
			Args:      datatypes.JSON(argsBlob),
			PlanHash:  PlanHash(in.Cmd, in.Args),
			Status:    models.CommandQueued,
			IssuedBy:  in.IssuedBy,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&out).Error; err != nil {
			return err
		}

		return logEvent(tx, in.Mid, models.EventCmdQueued, map[string]any{
			"cmd_seq": out.Seq,
			"cmd":     out.Cmd,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Command queued",
		zap.String("mid", out.Mid),
		zap.Int64("cmd_seq", out.Seq),
		zap.String("plan_hash", out.PlanHash))

	return &out, nil
}

func (a *AUV) getCommand(ctx context.Context, id int64) (*models.Command, error) {
	var cmd models.Command
	err := a.Db.Conn.WithContext(ctx).First(&cmd, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewDomainError(KindUnknownCommand, "command %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &cmd, nil
}

func (a *AUV) listCommands(ctx context.Context, q *CommandQuery) ([]models.Command, error) {
	tx := a.Db.Conn.WithContext(ctx).Model(&models.Command{})
	if q.Mid != "" {
		tx = tx.Where("mid = ?", q.Mid)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
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

	var cmds []models.Command
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	err := tx.Order("id desc").Find(&cmds).Error
	return cmds, err
}

// expireStale sweeps QUEUED commands older than the TTL to EXPIRED. The
// guarded transition makes it safe against a concurrent dispense.
func (a *AUV) expireStale(ctx context.Context) (int, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameAUVCore,
		zap.String(common.LoggerFieldAUVCategory, common.LoggerCategoryCommand),
	)

	cutoff := a.now().Add(-a.Cfg.CommandTTL)

	var expired int
	err := a.Db.Conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stale []models.Command
		if err := tx.Where("status = ? AND created_at < ?", models.CommandQueued, cutoff).
			Find(&stale).Error; err != nil {
			return err
		}

		for i := range stale {
			cmd := &stale[i]
			won, err := a.transition(ctx, tx, cmd, eventExpire, nil)
			if err != nil {
				return err
			}
			if !won {
				// a heartbeat claimed it between the read and the sweep
				continue
			}
			if err := logEvent(tx, cmd.Mid, models.EventCmdExpired, map[string]any{
				"cmd_seq":     cmd.Seq,
				"cmd":         cmd.Cmd,
				"age_seconds": a.now().Sub(cmd.CreatedAt).Seconds(),
			}); err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if expired > 0 {
		logger.Info("Expired stale commands", zap.Int("count", expired))
	}
	return expired, nil
}

type ICommandImpl struct {
	auv *AUV
}

func (ic *ICommandImpl) Enqueue(ctx context.Context, in *EnqueueInput) (*models.Command, error) {
	return ic.auv.enqueue(ctx, in)
}

func (ic *ICommandImpl) Get(ctx context.Context, id int64) (*models.Command, error) {
	return ic.auv.getCommand(ctx, id)
}

func (ic *ICommandImpl) List(ctx context.Context, q *CommandQuery) ([]models.Command, error) {
	return ic.auv.listCommands(ctx, q)
}

func (ic *ICommandImpl) ExpireStale(ctx context.Context) (int, error) {
	return ic.auv.expireStale(ctx)
}

func (a *AUV) GetICommand() ICommand {
	return &ICommandImpl{auv: a}
}
