package udpsock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeadline(t *testing.T) {
	t.Run("never", func(t *testing.T) {
		var d Deadline
		assert.True(t, d.IsNever())
		assert.Equal(t, Never, d)
		_, ok := d.Time()
		assert.False(t, ok)
		assert.True(t, d.runtimeDeadline().IsZero())
		assert.Equal(t, "never", d.String())
	})

	t.Run("at", func(t *testing.T) {
		when := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
		d := At(when)
		assert.False(t, d.IsNever())
		got, ok := d.Time()
		assert.True(t, ok)
		assert.True(t, got.Equal(when))
		assert.True(t, d.runtimeDeadline().Equal(when))
		assert.Equal(t, "2030-01-02T03:04:05Z", d.String())
	})

	t.Run("zero time is already expired", func(t *testing.T) {
		d := At(time.Time{})
		assert.False(t, d.IsNever())
		rd := d.runtimeDeadline()
		assert.False(t, rd.IsZero())
		assert.True(t, rd.Before(time.Now()))
	})

	t.Run("after", func(t *testing.T) {
		before := time.Now()
		d := After(time.Second)
		got, ok := d.Time()
		assert.True(t, ok)
		assert.WithinDuration(t, before.Add(time.Second), got, 100*time.Millisecond)
	})
}
