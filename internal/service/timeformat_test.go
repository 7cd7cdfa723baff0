package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatChatTime(t *testing.T) {
	now := time.Date(2025, time.March, 15, 14, 30, 0, 0, time.Local) // Saturday

	t.Run("same day shows time of day", func(t *testing.T) {
		at := time.Date(2025, time.March, 15, 9, 5, 0, 0, time.Local)
		assert.Equal(t, "9:05 AM", FormatChatTime(at, now))
	})

	t.Run("previous calendar day is Yesterday", func(t *testing.T) {
		at := time.Date(2025, time.March, 14, 23, 59, 0, 0, time.Local)
		assert.Equal(t, "Yesterday", FormatChatTime(at, now))
	})

	t.Run("within the last week shows weekday", func(t *testing.T) {
		at := time.Date(2025, time.March, 12, 10, 0, 0, 0, time.Local) // Wednesday
		assert.Equal(t, "Wed", FormatChatTime(at, now))
	})

	t.Run("older shows month and day", func(t *testing.T) {
		at := time.Date(2025, time.February, 2, 10, 0, 0, 0, time.Local)
		assert.Equal(t, "Feb 2", FormatChatTime(at, now))
	})

	t.Run("a week ago exactly falls out of the weekday window", func(t *testing.T) {
		at := now.Add(-7 * 24 * time.Hour)
		assert.Equal(t, "Mar 8", FormatChatTime(at, now))
	})
}
