package auv

import (
	"context"
	"encoding/json"

	"github.com/looplab/fsm"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"auvlab.xyz/triton-com-server/pkg/models"
)

const (
	eventIssue    = "issue"
	eventAccept   = "accept"
	eventReject   = "reject"
	eventComplete = "complete"
	eventFail     = "fail"
	eventExpire   = "expire"
)

// newLifecycle builds the command state machine rooted at the given status.
// QUEUED and the two in-flight states are the only non-terminal ones.
func newLifecycle(current models.CommandStatus) *fsm.FSM {
	return fsm.NewFSM(
		string(current),
		fsm.Events{
			{Name: eventIssue, Src: []string{string(models.CommandQueued)}, Dst: string(models.CommandIssued)},
			{Name: eventAccept, Src: []string{string(models.CommandIssued)}, Dst: string(models.CommandExecuting)},
			{Name: eventReject, Src: []string{string(models.CommandIssued)}, Dst: string(models.CommandCanceled)},
			{Name: eventComplete, Src: []string{string(models.CommandExecuting)}, Dst: string(models.CommandCompleted)},
			{Name: eventFail, Src: []string{string(models.CommandExecuting)}, Dst: string(models.CommandError)},
			{Name: eventExpire, Src: []string{string(models.CommandQueued)}, Dst: string(models.CommandExpired)},
		},
		fsm.Callbacks{},
	)
}

// transition performs the guarded status move. The state machine decides the
// destination; the UPDATE ... WHERE id AND status guard decides whether this
// worker won the row. Zero affected rows means someone else moved it first
// and the caller must re-read.
func (a *AUV) transition(ctx context.Context, tx *gorm.DB, cmd *models.Command, event string, extra map[string]any) (bool, error) {
	lc := newLifecycle(cmd.Status)
	if err := lc.Event(ctx, event); err != nil {
		return false, NewDomainError(KindBadState, "command %d cannot %s from %s", cmd.ID, event, cmd.Status)
	}
	to := models.CommandStatus(lc.Current())

	updates := map[string]any{"status": to, "updated_at": a.now()}
	for k, v := range extra {
		updates[k] = v
	}

	res := tx.Model(&models.Command{}).
		Where("id = ? AND status = ?", cmd.ID, cmd.Status).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	cmd.Status = to
	return true, nil
}

func logEvent(tx *gorm.DB, mid string, eventType string, detail map[string]any) error {
	blob, err := json.Marshal(detail)
	if err != nil {
		return err
	}
	return tx.Create(&models.EventLog{
		Mid:       &mid,
		EventType: eventType,
		Detail:    datatypes.JSON(blob),
	}).Error
}
