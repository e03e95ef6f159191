package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "10:00", cfg.Scheduler.WindowStart)
	assert.Equal(t, "17:00", cfg.Scheduler.WindowEnd)
	assert.Equal(t, 75, cfg.Scheduler.DefaultDuration)
	assert.Equal(t, 15, cfg.Scheduler.DefaultGap)
	assert.True(t, cfg.Scheduler.RespectExisting)
	assert.False(t, cfg.Seating.DepartmentScoped)
	assert.Equal(t, 30*time.Minute, cfg.Seating.CacheTTL)
	assert.False(t, cfg.Events.Enabled)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("SCHEDULER_WINDOW_END", "20:00")
	v.Set("SCHEDULER_SEED", 42)
	v.Set("SEATING_DEPARTMENT_SCOPED", true)
	v.Set("SEATING_CACHE_TTL", "not-a-duration")
	v.Set("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg := fromViper(v)
	assert.Equal(t, "20:00", cfg.Scheduler.WindowEnd)
	assert.Equal(t, int64(42), cfg.Scheduler.Seed)
	assert.True(t, cfg.Seating.DepartmentScoped)
	assert.Equal(t, 30*time.Minute, cfg.Seating.CacheTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}
