package auv

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"auvlab.xyz/triton-com-server/pkg/common"
	"auvlab.xyz/triton-com-server/pkg/models"
)

// resetDB truncates every table in dependency order. Development only; the
// HTTP layer gates it behind ADMIN_RESET_ENABLED.
func (a *AUV) resetDB(ctx context.Context) error {
	logger := common.GetLoggerWith(
		common.LoggerNameAUVCore,
		zap.String(common.LoggerFieldAUVCategory, common.LoggerCategoryAdmin),
	)

	err := a.Db.Conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{
			&models.EventLog{},
			&models.DescentCheck{},
			&models.Dive{},
			&models.Command{},
			&models.Heartbeat{},
			&models.Device{},
		} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Database reset complete")
	return nil
}

type IAdminImpl struct {
	auv *AUV
}

func (ia *IAdminImpl) ResetDB(ctx context.Context) error {
	return ia.auv.resetDB(ctx)
}

func (a *AUV) GetIAdmin() IAdmin {
	return &IAdminImpl{auv: a}
}
