package utils

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var (
	RedisClient *redis.Client
	ctx         = context.Background()

	// ErrSessionNotFound is returned when no session exists for a token.
	ErrSessionNotFound = errors.New("session not found")
)

// InitRedis initializes the Redis client
func InitRedis(addr, password string, db int) error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

// CloseRedis closes the Redis connection
func CloseRedis() error {
	if RedisClient != nil {
		return RedisClient.Close()
	}
	return nil
}

// CacheSet stores a value in Redis with expiration
func CacheSet(key string, value string, expiration time.Duration) error {
	if RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	return RedisClient.Set(ctx, key, value, expiration).Err()
}

// CacheGet retrieves a value from Redis
func CacheGet(key string) (string, error) {
	if RedisClient == nil {
		return "", fmt.Errorf("Redis client not initialized")
	}
	val, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", fmt.Errorf("key not found")
	}
	return val, err
}

// CacheDelete removes a key from Redis
func CacheDelete(key string) error {
	if RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	return RedisClient.Del(ctx, key).Err()
}

// Token session management. Sessions are keyed by a SHA256 hash of the
// access token so the token itself never lands in Redis.

// SessionProfile is the authenticated landlord stored alongside a session.
type SessionProfile struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// TokenSession represents a login session stored in Redis.
type TokenSession struct {
	Profile    SessionProfile `json:"profile"`
	SessionID  string         `json:"session_id"`
	CreatedAt  time.Time      `json:"created_at"`
	LastUsedAt time.Time      `json:"last_used_at"`
	ExpiresAt  time.Time      `json:"expires_at"`
}

// IsExpired reports whether the session has passed its expiry.
func (ts *TokenSession) IsExpired() bool {
	return time.Now().After(ts.ExpiresAt)
}

func generateTokenHash(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func sessionKey(accessToken string) string {
	return fmt.Sprintf("token:session:%s", generateTokenHash(accessToken))
}

// CreateTokenSession creates a new token session in Redis.
func CreateTokenSession(accessToken string, profile SessionProfile, ttl time.Duration) (*TokenSession, error) {
	if RedisClient == nil {
		return nil, fmt.Errorf("Redis client not initialized")
	}

	now := time.Now()
	session := &TokenSession{
		Profile:    profile,
		SessionID:  uuid.New().String(),
		CreatedAt:  now,
		LastUsedAt: now,
		ExpiresAt:  now.Add(ttl),
	}

	sessionData, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := RedisClient.Set(ctx, sessionKey(accessToken), sessionData, ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to store session in Redis: %w", err)
	}
	return session, nil
}

// GetTokenSession retrieves a token session from Redis.
func GetTokenSession(accessToken string) (*TokenSession, error) {
	if RedisClient == nil {
		return nil, fmt.Errorf("Redis client not initialized")
	}

	key := sessionKey(accessToken)
	sessionData, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session from Redis: %w", err)
	}

	var session TokenSession
	if err := json.Unmarshal([]byte(sessionData), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if session.IsExpired() {
		RedisClient.Del(ctx, key)
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

// TouchTokenSession updates the last-used timestamp for a token session.
func TouchTokenSession(accessToken string) error {
	session, err := GetTokenSession(accessToken)
	if err != nil {
		return err
	}

	session.LastUsedAt = time.Now()
	remainingTTL := time.Until(session.ExpiresAt)
	if remainingTTL <= 0 {
		return ErrSessionNotFound
	}

	sessionData, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal updated session: %w", err)
	}
	return RedisClient.Set(ctx, sessionKey(accessToken), sessionData, remainingTTL).Err()
}

// RevokeTokenSession removes a token session from Redis.
func RevokeTokenSession(accessToken string) error {
	if RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	if err := RedisClient.Del(ctx, sessionKey(accessToken)).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}
