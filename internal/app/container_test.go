package app

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kapu/messenger-api-go/internal/api"
	"github.com/kapu/messenger-api-go/internal/config"
	"github.com/kapu/messenger-api-go/internal/featureflag"
	"github.com/kapu/messenger-api-go/internal/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T, redisAddr string) *config.Config {
	t.Helper()
	host, portStr, err := net.SplitHostPort(redisAddr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	return &config.Config{
		API: config.APIConfig{
			Environment:    api.Staging,
			Timeout:        time.Second,
			CircuitBreaker: true,
		},
		Stream:       config.StreamConfig{URL: "ws://localhost:3000/api/v1/stream"},
		Redis:        config.RedisConfig{Host: host, Port: port},
		Session:      config.SessionConfig{TTL: time.Hour},
		Notification: config.NotificationConfig{Actions: "reply,read"},
	}
}

func TestBuild(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t, mr.Addr())

	container, err := Build(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer container.Close()

	assert.Equal(t, api.StagingBaseURL, container.API.BaseURL())
	assert.Nil(t, container.Conversations)
	assert.True(t, container.Flags.Enabled(featureflag.AttachContact))
	assert.True(t, container.Notifications.Enabled(notification.Reply))
	assert.False(t, container.Notifications.Enabled(notification.Call))

	exists, err := container.Sessions.Exists(context.Background())
	require.NoError(t, err)
	assert.False(t, exists)

	sub, err := container.NewSubscriber("acc-1")
	require.NoError(t, err)
	assert.NotNil(t, sub)
}

func TestBuildRejectsBadNotificationActions(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t, mr.Addr())
	cfg.Notification.Actions = "reply,shout"

	_, err := Build(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestBuildFailsWithoutRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t, mr.Addr())
	mr.Close()

	_, err := Build(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestBuildRequiresConfigAndLogger(t *testing.T) {
	_, err := Build(context.Background(), nil, zap.NewNop())
	assert.Error(t, err)

	_, err = Build(context.Background(), &config.Config{}, nil)
	assert.Error(t, err)
}
