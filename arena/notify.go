package arena

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

type Severity uint8

const (
	SeveritySuccess Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeveritySuccess {
		return "success"
	}

	return "error"
}

// Notification is a transient user-facing message. It is consumed once and
// discarded; persistent conditions live on the Session instead.
type Notification struct {
	Severity Severity
	Text     string
	At       time.Time
}

// Notifier receives one message per terminal action outcome.
type Notifier interface {
	Success(format string, args ...any)
	Error(format string, args ...any)
}

// Queue is a bounded, non-blocking Notifier. A full queue drops the message
// and counts the drop; producers are never stalled by a slow consumer.
type Queue struct {
	ch      chan Notification
	dropped atomic.Uint64
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 64
	}

	return &Queue{ch: make(chan Notification, size)}
}

func (q *Queue) Success(format string, args ...any) {
	q.push(Notification{Severity: SeveritySuccess, Text: fmt.Sprintf(format, args...), At: time.Now()})
}

func (q *Queue) Error(format string, args ...any) {
	q.push(Notification{Severity: SeverityError, Text: fmt.Sprintf(format, args...), At: time.Now()})
}

func (q *Queue) push(n Notification) {
	if n.Severity == SeverityError {
		log.Error().Str("notification", n.Text).Msg("action failed")
	} else {
		log.Info().Str("notification", n.Text).Msg("action succeeded")
	}

	select {
	case q.ch <- n:
	default:
		q.dropped.Add(1)
	}
}

// C is the consumer side of the queue.
func (q *Queue) C() <-chan Notification {
	return q.ch
}

func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}
