// Package notify delivers desktop notifications for workflow milestones.
package notify

import (
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/rileyhilliard/wfmon/internal/errors"
	"github.com/rileyhilliard/wfmon/internal/logger"
)

// Urgency selects the notification style.
type Urgency int

const (
	// UrgencyNormal is an informational notification.
	UrgencyNormal Urgency = iota
	// UrgencyCritical is an attention-demanding alert.
	UrgencyCritical
)

// Event is a single notification.
type Event struct {
	Title   string
	Message string
	Urgency Urgency
}

// Sink delivers notification events.
type Sink interface {
	Notify(ev Event) error
}

// DesktopSink sends events to the desktop notification service.
type DesktopSink struct{}

// Notify delivers the event via the platform notifier. Critical events use
// an alert so they play a sound where the platform supports one.
func (DesktopSink) Notify(ev Event) error {
	var err error
	if ev.Urgency == UrgencyCritical {
		err = beeep.Alert(ev.Title, ev.Message, "")
	} else {
		err = beeep.Notify(ev.Title, ev.Message, "")
	}
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrNotify,
			"Can't deliver desktop notification",
			"Check that a notification service is running, or disable notifications.")
	}
	return nil
}

// LogSink writes events to the logger instead of the desktop. Used when
// notifications are disabled or no desktop service is reachable.
type LogSink struct {
	Logger logger.Logger
}

func (s LogSink) Notify(ev Event) error {
	log := s.Logger
	if log == nil {
		log = logger.Default()
	}
	if ev.Urgency == UrgencyCritical {
		log.Warn("%s: %s", ev.Title, ev.Message)
	} else {
		log.Info("%s: %s", ev.Title, ev.Message)
	}
	return nil
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Notify(Event) error { return nil }

// Notifier wraps a sink with per-key deduplication: each key fires at most
// once for the lifetime of the notifier. Re-parsing the log from scratch
// every tick re-derives the same transitions over and over; the dedup set
// is what keeps that from spamming the desktop.
type Notifier struct {
	mu   sync.Mutex
	sink Sink
	sent map[string]struct{}
	log  logger.Logger
}

// NewNotifier creates a notifier over the given sink.
func NewNotifier(sink Sink) *Notifier {
	return &Notifier{
		sink: sink,
		sent: make(map[string]struct{}),
		log:  logger.Default(),
	}
}

// Announce delivers the event unless this key has already fired. Delivery
// failures are logged and swallowed: a broken notification service must
// never take down the monitor.
func (n *Notifier) Announce(key string, ev Event) {
	n.mu.Lock()
	if _, dup := n.sent[key]; dup {
		n.mu.Unlock()
		return
	}
	n.sent[key] = struct{}{}
	n.mu.Unlock()

	if err := n.sink.Notify(ev); err != nil {
		n.log.Warn("notification failed: %v", err)
	}
}

// Sent reports whether a key has already fired.
func (n *Notifier) Sent(key string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.sent[key]
	return ok
}

// TransitionKey builds the dedup key for a unit entering a state.
func TransitionKey(unitID, state string) string {
	return unitID + ":" + state
}
