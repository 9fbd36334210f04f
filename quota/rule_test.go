package quota

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRule_Unlimited(t *testing.T) {
	assert.True(t, Unlimited().Unlimited())
	assert.True(t, Rule{Limit: 0, Window: time.Minute}.Unlimited())
	assert.True(t, Rule{Limit: -5}.Unlimited())
	assert.False(t, PerMinute(10).Unlimited())
}

func TestRule_Constructors(t *testing.T) {
	assert.Equal(t, Rule{Limit: 30, Window: time.Minute}, PerMinute(30))
	assert.Equal(t, Rule{Limit: 100, Window: time.Hour}, PerHour(100))
	assert.Equal(t, Rule{Limit: 5, Window: 24 * time.Hour}, PerDay(5))

	// a zero ceiling means unlimited, not blocked
	assert.True(t, PerDay(0).Unlimited())
	assert.True(t, PerMinute(-1).Unlimited())
}

func TestRule_Validate(t *testing.T) {
	assert.NoError(t, Unlimited().Validate())
	assert.NoError(t, PerMinute(10).Validate())

	// limited rule without a window is a configuration error
	assert.Error(t, Rule{Limit: 10}.Validate())
	assert.Error(t, Rule{Limit: 10, Window: -time.Second}.Validate())
}
