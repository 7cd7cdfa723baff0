package service

import "time"

// FormatChatTime renders a timestamp the way the chat list shows it: time of
// day for today, "Yesterday", a weekday name inside the last week, otherwise
// month and day. The result is display-only; it is neither sortable nor
// parseable back to a timestamp.
func FormatChatTime(t, now time.Time) string {
	t = t.Local()
	now = now.Local()

	y1, m1, d1 := t.Date()
	y2, m2, d2 := now.Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return t.Format("3:04 PM")
	}

	yesterday := now.AddDate(0, 0, -1)
	y3, m3, d3 := yesterday.Date()
	if y1 == y3 && m1 == m3 && d1 == d3 {
		return "Yesterday"
	}

	if now.Sub(t) < 7*24*time.Hour {
		return t.Format("Mon")
	}

	return t.Format("Jan 2")
}
