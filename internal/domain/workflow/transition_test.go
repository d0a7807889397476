package workflow

import (
	"errors"
	"testing"
	"time"

	"github.com/sugun-2430327/project-backend/internal/domain/entity"
)

func TestCanFire_DirectMode(t *testing.T) {
	tests := []struct {
		name     string
		current  entity.EnrollmentStatus
		trigger  Trigger
		expected bool
	}{
		{"approve from pending", entity.EnrollmentStatusPending, TriggerApprove, true},
		{"decline from pending", entity.EnrollmentStatusPending, TriggerDecline, true},
		{"withdraw from pending", entity.EnrollmentStatusPending, TriggerWithdraw, true},
		{"agent approve not in direct mode", entity.EnrollmentStatusPending, TriggerAgentApprove, false},
		{"approve from approved", entity.EnrollmentStatusApproved, TriggerApprove, false},
		{"withdraw from approved", entity.EnrollmentStatusApproved, TriggerWithdraw, false},
		{"decline from declined", entity.EnrollmentStatusDeclined, TriggerDecline, false},
		{"withdraw from withdrawn", entity.EnrollmentStatusWithdrawn, TriggerWithdraw, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanFire(ModeDirect, tt.current, tt.trigger); got != tt.expected {
				t.Errorf("CanFire() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCanFire_AgentMode(t *testing.T) {
	tests := []struct {
		name     string
		current  entity.EnrollmentStatus
		trigger  Trigger
		expected bool
	}{
		{"agent approve from pending", entity.EnrollmentStatusPending, TriggerAgentApprove, true},
		{"agent decline from pending", entity.EnrollmentStatusPending, TriggerAgentDecline, true},
		{"withdraw from pending", entity.EnrollmentStatusPending, TriggerWithdraw, true},
		{"admin approve from pending not allowed", entity.EnrollmentStatusPending, TriggerApprove, false},
		{"admin approve from agent approved", entity.EnrollmentStatusAgentApproved, TriggerApprove, true},
		{"admin decline from agent approved", entity.EnrollmentStatusAgentApproved, TriggerDecline, true},
		{"withdraw from agent approved not allowed", entity.EnrollmentStatusAgentApproved, TriggerWithdraw, false},
		{"agent approve twice", entity.EnrollmentStatusAgentApproved, TriggerAgentApprove, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanFire(ModeAgent, tt.current, tt.trigger); got != tt.expected {
				t.Errorf("CanFire() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestTransition_ApproveEffects(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	eff, err := Transition(ModeDirect, entity.EnrollmentStatusPending, Event{
		Trigger: TriggerApprove,
		ActorID: 42,
		Notes:   "ok",
		Now:     now,
	})
	if err != nil {
		t.Fatalf("Transition() error = %v", err)
	}
	if eff.Status != entity.EnrollmentStatusApproved {
		t.Errorf("Status = %s, want APPROVED", eff.Status)
	}
	if eff.ApprovedDate == nil || !eff.ApprovedDate.Equal(now) {
		t.Errorf("ApprovedDate = %v, want %v", eff.ApprovedDate, now)
	}
	if eff.AdminNotes == nil || *eff.AdminNotes != "ok" {
		t.Errorf("AdminNotes = %v, want ok", eff.AdminNotes)
	}
	if eff.DeclinedDate != nil || eff.WithdrawnDate != nil || eff.AgentID != nil {
		t.Error("unexpected side effects set")
	}
}

func TestTransition_AgentDeclineDefaultNote(t *testing.T) {
	now := time.Now()
	eff, err := Transition(ModeAgent, entity.EnrollmentStatusPending, Event{
		Trigger: TriggerAgentDecline,
		ActorID: 7,
		Now:     now,
	})
	if err != nil {
		t.Fatalf("Transition() error = %v", err)
	}
	if eff.Status != entity.EnrollmentStatusDeclined {
		t.Errorf("Status = %s, want DECLINED", eff.Status)
	}
	if eff.AgentNotes == nil || *eff.AgentNotes != DefaultDeclineNote {
		t.Errorf("AgentNotes = %v, want default note", eff.AgentNotes)
	}
	if eff.AgentID == nil || *eff.AgentID != 7 {
		t.Errorf("AgentID = %v, want 7", eff.AgentID)
	}
	if eff.DeclinedDate == nil || eff.AgentDeclinedDate == nil {
		t.Error("decline timestamps not set")
	}
}

func TestTransition_InvalidFromTerminal(t *testing.T) {
	for _, status := range []entity.EnrollmentStatus{
		entity.EnrollmentStatusApproved,
		entity.EnrollmentStatusDeclined,
		entity.EnrollmentStatusWithdrawn,
	} {
		_, err := Transition(ModeDirect, status, Event{Trigger: TriggerApprove, Now: time.Now()})
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Transition from %s: error = %v, want ErrInvalidTransition", status, err)
		}
	}
}

func TestTransition_UnknownMode(t *testing.T) {
	_, err := Transition(PipelineMode("bogus"), entity.EnrollmentStatusPending, Event{Trigger: TriggerApprove})
	if !errors.Is(err, ErrUnknownMode) {
		t.Errorf("error = %v, want ErrUnknownMode", err)
	}
}

func TestApprovalEligibleState(t *testing.T) {
	if got := ApprovalEligibleState(ModeDirect); got != entity.EnrollmentStatusPending {
		t.Errorf("direct mode = %s, want PENDING", got)
	}
	if got := ApprovalEligibleState(ModeAgent); got != entity.EnrollmentStatusAgentApproved {
		t.Errorf("agent mode = %s, want AGENT_APPROVED", got)
	}
}
