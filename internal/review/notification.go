// Package review implements the order review workflow engine: the debounced
// product search, the match resolution flow, the status transition gate and
// the order detail synchronizer that keeps one in-memory snapshot consistent
// with the remote order record.
package review

// NotificationKind distinguishes transient outcome toasts
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
)

// Notification is a transient, user-visible action outcome (match applied,
// status changed, export finished). Persistent load failures go through
// snapshot Err instead.
type Notification struct {
	Kind    NotificationKind
	Message string
}

// Notifier receives action outcome notifications. Implementations must not
// block; they are invoked from engine goroutines.
type Notifier func(Notification)

func (n Notifier) success(message string) {
	if n != nil {
		n(Notification{Kind: NotifySuccess, Message: message})
	}
}

func (n Notifier) error(message string) {
	if n != nil {
		n(Notification{Kind: NotifyError, Message: message})
	}
}
