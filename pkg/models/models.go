package models

import (
	"time"

	"gorm.io/datatypes"
)

type CommandStatus string

const (
	CommandQueued    CommandStatus = "QUEUED"
	CommandIssued    CommandStatus = "ISSUED"
	CommandExecuting CommandStatus = "EXECUTING"
	CommandCompleted CommandStatus = "COMPLETED"
	CommandCanceled  CommandStatus = "CANCELED"
	CommandExpired   CommandStatus = "EXPIRED"
	CommandError     CommandStatus = "ERROR"
)

// Device is the latest-value rollup per vehicle, written only by the
// heartbeat ingest path.
type Device struct {
	Mid        string `gorm:"primaryKey;column:mid;type:varchar(32)"`
	Fw         string `gorm:"type:varchar(64)"`
	LastState  string `gorm:"type:varchar(32)"`
	LastHbSeq  *int64
	LastSeenAt time.Time
	LastPos    datatypes.JSON
	LastPwr    datatypes.JSON
	LastEnv    datatypes.JSON
	LastNet    datatypes.JSON
}

// Heartbeat is the append-only telemetry log. The unique (mid, hb_seq) pair
// makes retransmitted frames an insert no-op.
type Heartbeat struct {
	ID         int64  `gorm:"primaryKey"`
	Mid        string `gorm:"column:mid;type:varchar(32);uniqueIndex:uq_heartbeats_mid_seq,priority:1"`
	HbSeq      int64  `gorm:"uniqueIndex:uq_heartbeats_mid_seq,priority:2"`
	TsUtc      time.Time
	Payload    datatypes.JSON
	ReceivedAt time.Time
}

type Command struct {
	ID       int64  `gorm:"primaryKey"`
	Mid      string `gorm:"column:mid;type:varchar(32);uniqueIndex:uq_commands_mid_seq,priority:1"`
	Seq      int64  `gorm:"uniqueIndex:uq_commands_mid_seq,priority:2"`
	Cmd      string `gorm:"type:varchar(32)"`
	Args     datatypes.JSON
	PlanHash string        `gorm:"type:varchar(64)"`
	Status   CommandStatus `gorm:"type:varchar(16);index"`
	IssuedBy string        `gorm:"type:varchar(64)"`

	// IssuedHbSeq records the heartbeat at which the command was dispensed;
	// a retransmitted heartbeat re-returns the same command through it.
	IssuedHbSeq *int64 `gorm:"index"`

	CreatedAt   time.Time
	IssuedAt    *time.Time
	ExecutingAt *time.Time
	CompletedAt *time.Time
	UpdatedAt   time.Time
}

// DescentCheck is the append-only audit of pre-dive validations.
type DescentCheck struct {
	ID        int64  `gorm:"primaryKey"`
	Mid       string `gorm:"column:mid;type:varchar(32);uniqueIndex:uq_descent_mid_seq,priority:1"`
	CheckSeq  int64  `gorm:"uniqueIndex:uq_descent_mid_seq,priority:2"`
	CmdSeq    int64
	PlanHash  string `gorm:"type:varchar(64)"`
	Ok        bool
	Reason    string `gorm:"type:varchar(128)"`
	Payload   datatypes.JSON
	CreatedAt time.Time
}

type Dive struct {
	ID        int64  `gorm:"primaryKey"`
	Mid       string `gorm:"column:mid;type:varchar(32);index"`
	CmdSeq    int64
	Ok        bool
	Summary   datatypes.JSON
	StartedAt *time.Time
	EndedAt   *time.Time
	CreatedAt time.Time
}

type EventLog struct {
	ID        int64   `gorm:"primaryKey"`
	Mid       *string `gorm:"column:mid;type:varchar(32);index"`
	EventType string  `gorm:"type:varchar(64);index"`
	Detail    datatypes.JSON
	CreatedAt time.Time
}

const (
	EventHeartbeat    = "HB"
	EventCmdQueued    = "CMD_QUEUED"
	EventCmdIssued    = "CMD_ISSUED"
	EventCmdExpired   = "CMD_EXPIRED"
	EventCmdCanceled  = "CMD_CANCELED"
	EventDescentCheck = "DESCENT_CHECK"
	EventAscentNotify = "ASCENT_NOTIFY"
)
