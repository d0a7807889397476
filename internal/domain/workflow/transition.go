// Package workflow defines the enrollment approval lifecycle as a pure
// transition function: (mode, current status, event) -> effects. Effects
// are applied atomically by the persistence layer; nothing here mutates
// shared state.
package workflow

import (
	"fmt"
	"time"

	"github.com/sugun-2430327/project-backend/internal/domain/entity"
)

// PipelineMode selects which approval pipeline a deployment runs
type PipelineMode string

const (
	// ModeDirect approves enrollments in a single admin step:
	// PENDING -> APPROVED/DECLINED
	ModeDirect PipelineMode = "direct"

	// ModeAgent requires agent sign-off before admin finalization:
	// PENDING -> AGENT_APPROVED -> APPROVED/DECLINED
	ModeAgent PipelineMode = "agent"
)

// IsValid returns true if the mode is a known pipeline mode
func (m PipelineMode) IsValid() bool {
	return m == ModeDirect || m == ModeAgent
}

// String returns the string representation of the mode
func (m PipelineMode) String() string {
	return string(m)
}

// DefaultDeclineNote is attached when an agent declines without a note
const DefaultDeclineNote = "Declined by agent"

// Event carries a trigger together with the acting identity and clock
type Event struct {
	Trigger Trigger
	ActorID int64
	Notes   string
	Now     time.Time
}

// Effects is the immutable outcome of a transition: the new status plus
// the fields the persistence layer must set in the same transaction.
type Effects struct {
	Status            entity.EnrollmentStatus
	ApprovedDate      *time.Time
	DeclinedDate      *time.Time
	WithdrawnDate     *time.Time
	AgentApprovedDate *time.Time
	AgentDeclinedDate *time.Time
	AgentID           *int64
	AgentNotes        *string
	AdminNotes        *string
}

// transitions returns the permitted trigger graph for the mode
func transitions(mode PipelineMode) map[entity.EnrollmentStatus]map[Trigger]entity.EnrollmentStatus {
	switch mode {
	case ModeDirect:
		return map[entity.EnrollmentStatus]map[Trigger]entity.EnrollmentStatus{
			entity.EnrollmentStatusPending: {
				TriggerApprove:  entity.EnrollmentStatusApproved,
				TriggerDecline:  entity.EnrollmentStatusDeclined,
				TriggerWithdraw: entity.EnrollmentStatusWithdrawn,
			},
		}
	case ModeAgent:
		return map[entity.EnrollmentStatus]map[Trigger]entity.EnrollmentStatus{
			entity.EnrollmentStatusPending: {
				TriggerAgentApprove: entity.EnrollmentStatusAgentApproved,
				TriggerAgentDecline: entity.EnrollmentStatusDeclined,
				TriggerWithdraw:     entity.EnrollmentStatusWithdrawn,
			},
			entity.EnrollmentStatusAgentApproved: {
				TriggerApprove: entity.EnrollmentStatusApproved,
				TriggerDecline: entity.EnrollmentStatusDeclined,
			},
		}
	}
	return nil
}

// CanFire returns true if the trigger is permitted from the current status
func CanFire(mode PipelineMode, current entity.EnrollmentStatus, trigger Trigger) bool {
	graph := transitions(mode)
	if graph == nil {
		return false
	}
	_, ok := graph[current][trigger]
	return ok
}

// ApprovalEligibleState is the status an enrollment must hold before an
// admin may approve or decline it in the given mode.
func ApprovalEligibleState(mode PipelineMode) entity.EnrollmentStatus {
	if mode == ModeAgent {
		return entity.EnrollmentStatusAgentApproved
	}
	return entity.EnrollmentStatusPending
}

// Transition evaluates the event against the current status and returns
// the effects to apply. It never mutates its inputs.
func Transition(mode PipelineMode, current entity.EnrollmentStatus, ev Event) (Effects, error) {
	graph := transitions(mode)
	if graph == nil {
		return Effects{}, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}

	next, ok := graph[current][ev.Trigger]
	if !ok {
		return Effects{}, fmt.Errorf("%w: cannot fire %s from %s in %s mode",
			ErrInvalidTransition, ev.Trigger, current, mode)
	}

	now := ev.Now
	eff := Effects{Status: next}

	switch ev.Trigger {
	case TriggerApprove:
		eff.ApprovedDate = &now
		eff.AdminNotes = strPtr(ev.Notes)
	case TriggerDecline:
		eff.DeclinedDate = &now
		eff.AdminNotes = strPtr(ev.Notes)
	case TriggerAgentApprove:
		eff.AgentApprovedDate = &now
		eff.AgentID = &ev.ActorID
		eff.AgentNotes = strPtr(ev.Notes)
	case TriggerAgentDecline:
		notes := ev.Notes
		if notes == "" {
			notes = DefaultDeclineNote
		}
		eff.DeclinedDate = &now
		eff.AgentDeclinedDate = &now
		eff.AgentID = &ev.ActorID
		eff.AgentNotes = &notes
	case TriggerWithdraw:
		eff.WithdrawnDate = &now
	}

	return eff, nil
}

func strPtr(s string) *string {
	return &s
}
