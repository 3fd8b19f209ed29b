package audit

import "go.uber.org/zap"

// LogObserver пишет события в журнал приложения
type LogObserver struct {
	log *zap.Logger
}

func NewLogObserver(log *zap.Logger) *LogObserver {
	return &LogObserver{log: log.Named("audit")}
}

func (l *LogObserver) Notify(event Event) {
	l.log.Info(string(event.Action),
		zap.String("id", event.ID),
		zap.String("slug", event.Slug),
		zap.String("url", event.URL),
		zap.String("user_id", event.UserID),
		zap.String("reason", event.Reason),
	)
}

func (l *LogObserver) Close() error {
	return nil
}
