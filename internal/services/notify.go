package services

import (
	"sync"
	"time"

	applog "shopfront/internal/log"
)

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
	NoticeInfo    NoticeLevel = "info"
)

// Notice is a transient user-facing message (a toast).
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	At      time.Time   `json:"at"`
}

type Notifier interface {
	Notify(level NoticeLevel, msg string)
}

// LogNotifier only logs; used where no session is around to receive notices.
type LogNotifier struct{}

func (LogNotifier) Notify(level NoticeLevel, msg string) {
	applog.Info(nil, "notice", map[string]any{"level": string(level), "message": msg})
}

const maxNotices = 20

// NoticeBox buffers notices for one session until the client drains them.
// Failures from background cart syncs can only reach the user this way.
type NoticeBox struct {
	mu      sync.Mutex
	userID  string
	notices []Notice
}

func NewNoticeBox(userID string) *NoticeBox { return &NoticeBox{userID: userID} }

func (b *NoticeBox) Notify(level NoticeLevel, msg string) {
	b.mu.Lock()
	b.notices = append(b.notices, Notice{Level: level, Message: msg, At: time.Now().UTC()})
	if len(b.notices) > maxNotices {
		b.notices = b.notices[len(b.notices)-maxNotices:]
	}
	b.mu.Unlock()
	applog.Info(nil, "notice", map[string]any{"user_id": b.userID, "level": string(level), "message": msg})
}

// Drain returns and clears the buffered notices.
func (b *NoticeBox) Drain() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.notices
	b.notices = nil
	if out == nil {
		out = []Notice{}
	}
	return out
}
