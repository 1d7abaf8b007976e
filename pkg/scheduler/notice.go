package scheduler

// Level is the severity of a Notice.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}
	return "unknown"
}

// Notice is feedback shown to the user.
type Notice struct {
	Level   Level
	Message string
}

// Notifier surfaces notices to the user.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notice)

func (fn NotifierFunc) Notify(n Notice) {
	fn(n)
}

// NoticeLog keeps the most recent notices for a status line.
type NoticeLog struct {
	limit   int
	notices []Notice
}

func NewNoticeLog(limit int) *NoticeLog {
	return &NoticeLog{limit: max(limit, 1)}
}

func (l *NoticeLog) Notify(n Notice) {
	l.notices = append(l.notices, n)
	if len(l.notices) > l.limit {
		l.notices = l.notices[len(l.notices)-l.limit:]
	}
}

// Last returns the newest notice.
func (l *NoticeLog) Last() (Notice, bool) {
	if len(l.notices) == 0 {
		return Notice{}, false
	}
	return l.notices[len(l.notices)-1], true
}

// All returns the kept notices, oldest first.
func (l *NoticeLog) All() []Notice {
	return l.notices
}
