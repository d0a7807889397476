package workflow

// Trigger represents an event that can cause an enrollment state transition
type Trigger string

const (
	TriggerAgentApprove Trigger = "AGENT_APPROVE"
	TriggerAgentDecline Trigger = "AGENT_DECLINE"
	TriggerApprove      Trigger = "APPROVE"
	TriggerDecline      Trigger = "DECLINE"
	TriggerWithdraw     Trigger = "WITHDRAW"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
