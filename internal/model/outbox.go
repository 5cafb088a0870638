package model

import "time"

const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusDropped = "dropped"
)

// OutboxMessage is a rendered email waiting for delivery.
type OutboxMessage struct {
	ID            string     `db:"id"`
	ToEmail       string     `db:"to_email"`
	Subject       string     `db:"subject"`
	HTML          string     `db:"html"`
	Kind          string     `db:"kind"`
	Status        string     `db:"status"`
	Attempts      int        `db:"attempts"`
	LastError     *string    `db:"last_error"`
	NextAttemptAt time.Time  `db:"next_attempt_at"`
	CreatedAt     time.Time  `db:"created_at"`
	SentAt        *time.Time `db:"sent_at"`
}
