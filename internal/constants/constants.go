package constants

import "time"

var APIConfig = struct {
	Timeout   time.Duration
	UserAgent string
}{
	Timeout:   10 * time.Second,
	UserAgent: "messenger-api-go/1.0",
}

var CircuitBreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	HealthCheckInterval time.Duration
}{
	FailureThreshold:    3,
	ResetTimeout:        30 * time.Second,
	HealthCheckInterval: 1 * time.Minute,
}

var ProbeConfig = struct {
	Concurrency int
	Timeout     time.Duration
}{
	Concurrency: 3,
	Timeout:     5 * time.Second,
}

var WebSocketConfig = struct {
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
	HandshakeTimeout     time.Duration
	StopTimeout          time.Duration
}{
	MaxReconnectAttempts: 5,
	ReconnectDelay:       5 * time.Second,
	HandshakeTimeout:     10 * time.Second,
	StopTimeout:          5 * time.Second,
}

var RedisConfig = struct {
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
}{
	DialTimeout:  5 * time.Second,
	ReadTimeout:  3 * time.Second,
	WriteTimeout: 3 * time.Second,
	PoolSize:     10,
}

var CacheKeys = struct {
	FeatureFlags string
	Session      string
}{
	FeatureFlags: "messenger:feature_flags",
	Session:      "messenger:session",
}

var CacheTTL = struct {
	Session time.Duration
}{
	Session: 30 * 24 * time.Hour,
}
