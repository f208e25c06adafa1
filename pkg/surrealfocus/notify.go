package surrealfocus

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store"
)

// maxNotifications bounds the notifications kept for clients to fetch.
const maxNotifications = 32

// notification is a store.Notification with the time it was raised.
type notification struct {
	store.Notification
	At time.Time `json:"at"`
}

// notificationLog is the toast sink of the server. Notifications are logged
// and kept until a client takes them.
type notificationLog struct {
	log zerolog.Logger

	mu      sync.Mutex
	pending []notification
}

var _ store.Notifier = (*notificationLog)(nil)

func newNotificationLog(log zerolog.Logger) *notificationLog {
	return &notificationLog{log: log}
}

func (n *notificationLog) Notify(note store.Notification) {
	ev := n.log.Info()
	if note.Level == store.LevelError {
		ev = n.log.Warn()
	}
	ev.Str("title", note.Title).Bool("reload", note.Reload).Msg(note.Message)

	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending = append(n.pending, notification{Notification: note, At: time.Now()})
	if len(n.pending) > maxNotifications {
		n.pending = n.pending[len(n.pending)-maxNotifications:]
	}
}

// Take returns the pending notifications and clears them.
func (n *notificationLog) Take() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.pending
	n.pending = nil
	if out == nil {
		out = []notification{}
	}
	return out
}
