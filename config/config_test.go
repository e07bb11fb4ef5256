package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "hms", cfg.DatabaseName)
	assert.Equal(t, 24, cfg.CancellationNoticeHours)
	assert.Equal(t, 3, cfg.MaxReschedules)
	assert.Equal(t, 30, cfg.DefaultSlotMinutes)
	assert.Equal(t, 24*time.Hour, cfg.CancellationNotice())
	assert.Equal(t, 30*time.Second, cfg.BookingLockTTL())
	assert.Equal(t, []string{"log"}, cfg.Notifiers())
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CANCELLATION_NOTICE_HOURS", "48")
	t.Setenv("NOTIFIER", "log, Kafka ,")
	t.Setenv("LOCK_BACKEND", "local")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 48*time.Hour, cfg.CancellationNotice())
	assert.Equal(t, []string{"log", "kafka"}, cfg.Notifiers())
	assert.Equal(t, "local", cfg.LockBackend)
}

func TestValidate(t *testing.T) {
	base, err := Load(viper.New())
	require.NoError(t, err)

	prod := base
	prod.Env = "production"
	assert.Error(t, prod.Validate())
	prod.JWTSecret = "s3cret"
	assert.NoError(t, prod.Validate())

	badTZ := base
	badTZ.ClinicTimezone = "Mars/Olympus"
	assert.Error(t, badTZ.Validate())

	badLock := base
	badLock.LockBackend = "etcd"
	assert.Error(t, badLock.Validate())

	shortLease := base
	shortLease.LockBackend = "redis"
	shortLease.BookingLockTTLSeconds = 1
	assert.Error(t, shortLease.Validate())

	noReschedules := base
	noReschedules.MaxReschedules = 0
	assert.Error(t, noReschedules.Validate())
}
