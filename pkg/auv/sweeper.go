package auv

import (
	"context"
	"time"

	"go.uber.org/zap"

	"auvlab.xyz/triton-com-server/pkg/common"
)

// Sweeper is the background expiration task. It is owned by the process
// lifecycle: main starts Run in a goroutine and cancels its context on
// shutdown.
type Sweeper struct {
	Auv    *AUV
	Period time.Duration
}

func NewSweeper(a *AUV, period time.Duration) *Sweeper {
	return &Sweeper{Auv: a, Period: period}
}

func (s *Sweeper) Run(ctx context.Context) {
	logger := common.GetLoggerWith(common.LoggerNameSweeper)
	logger.Info("Command expiration sweep started", zap.Duration("period", s.Period))

	ticker := time.NewTicker(s.Period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Command expiration sweep stopped")
			return
		case <-ticker.C:
			n, err := s.Auv.Command.ExpireStale(ctx)
			if err != nil {
				logger.Error("Sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("Sweep expired commands", zap.Int("count", n))
			}
		}
	}
}
