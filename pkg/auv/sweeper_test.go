package auv

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auvlab.xyz/triton-com-server/pkg/models"
	_ "auvlab.xyz/triton-com-server/pkg/testing"
)

func TestSweeperExpiresInBackground(t *testing.T) {
	a := newTestAUV(t)
	ctx := context.Background()
	mid := uuid.NewString()
	seedDevice(t, a, mid)

	past := time.Now().UTC().Add(-2 * time.Hour)
	a.NowFn = func() time.Time { return past }
	cmd, err := a.Command.Enqueue(ctx, &EnqueueInput{Mid: mid, Cmd: "RUN_DIVE", Args: runDiveArgs()})
	require.NoError(t, err)
	a.NowFn = nil

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper := NewSweeper(a, 10*time.Millisecond)
	go sweeper.Run(runCtx)

	assert.Eventually(t, func() bool {
		var got models.Command
		if err := a.Db.Conn.First(&got, "id = ?", cmd.ID).Error; err != nil {
			return false
		}
		return got.Status == models.CommandExpired
	}, 2*time.Second, 20*time.Millisecond)
}

func TestSweeperStopsOnCancel(t *testing.T) {
	a := newTestAUV(t)

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	sweeper := NewSweeper(a, 10*time.Millisecond)
	go func() {
		sweeper.Run(runCtx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on context cancel")
	}
}
