package client

import (
	"fmt"
	"sync"
	"time"
)

// Notification types.
const (
	NotifySuccess = "success"
	NotifyError   = "error"
	NotifyWarning = "warning"
	NotifyInfo    = "info"
)

const (
	defaultNotifyDuration = 5 * time.Second
	errorNotifyDuration   = 7 * time.Second
)

// Notification is one transient user-facing message.
type Notification struct {
	ID      string
	Type    string
	Title   string
	Message string
}

// NotifyOption adjusts a single notification.
type NotifyOption func(*notifySettings)

type notifySettings struct {
	duration time.Duration
}

// WithDuration overrides how long the notification stays active.
func WithDuration(d time.Duration) NotifyOption {
	return func(s *notifySettings) { s.duration = d }
}

// NotificationCenter holds active notifications and expires them after their
// duration. Notifications are not persisted.
type NotificationCenter struct {
	mu     sync.Mutex
	items  []Notification
	timers map[string]*time.Timer
	seq    int
	now    func() time.Time
}

// NewNotificationCenter returns an empty center.
func NewNotificationCenter() *NotificationCenter {
	return &NotificationCenter{
		timers: make(map[string]*time.Timer),
		now:    time.Now,
	}
}

// Notify appends a notification and schedules its removal. Error
// notifications default to a longer duration so they can be read.
func (c *NotificationCenter) Notify(notifyType, title, message string, opts ...NotifyOption) string {
	settings := notifySettings{duration: defaultNotifyDuration}
	if notifyType == NotifyError {
		settings.duration = errorNotifyDuration
	}
	for _, opt := range opts {
		opt(&settings)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	id := fmt.Sprintf("%d-%d", c.now().UnixNano(), c.seq)

	c.items = append(c.items, Notification{
		ID:      id,
		Type:    notifyType,
		Title:   title,
		Message: message,
	})
	c.timers[id] = time.AfterFunc(settings.duration, func() { c.Dismiss(id) })

	return id
}

// Dismiss removes a notification. Unknown ids are ignored.
func (c *NotificationCenter) Dismiss(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if timer, ok := c.timers[id]; ok {
		timer.Stop()
		delete(c.timers, id)
	}
	for i, item := range c.items {
		if item.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// Active returns the current notifications in insertion order.
func (c *NotificationCenter) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := make([]Notification, len(c.items))
	copy(snapshot, c.items)
	return snapshot
}
