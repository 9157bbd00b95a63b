package domain

import "time"

// UserProfile is the per-guest activity summary rendered into admin
// notifications. FirstSeen is set once and never overwritten;
// MessageCount only grows.
type UserProfile struct {
	Username     string
	UserID       string
	Language     string
	FirstSeen    time.Time
	LastActive   time.Time
	MessageCount int64
}

// Notification timestamps are displayed in a fixed zone regardless of
// where the relay runs.
var notifyZone = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		return time.FixedZone("CST", 8*3600)
	}
	return loc
}()

// FormatTime renders a timestamp in the notification display zone.
func FormatTime(t time.Time) string {
	return t.In(notifyZone).Format("2006/01/02 15:04:05")
}
