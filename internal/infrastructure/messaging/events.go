package messaging

const (
	AuditQueue      = "breakout_audit"
	DeadLetterQueue = "dead_letter_queue"
)
