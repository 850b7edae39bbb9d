package utils

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
)

// Scope is the lifetime of a stored session: durable sessions survive for
// thirty days ("remember me"), session-scoped ones until logout or expiry.
type Scope string

const (
	ScopeSession Scope = "session"
	ScopeDurable Scope = "durable"
)

const (
	sessionTTL = 24 * time.Hour
	durableTTL = 30 * 24 * time.Hour
)

// SessionCredentials is what a client can recover from a session token to
// pre-fill the login form.
type SessionCredentials struct {
	Phone      string    `json:"phone"`
	Role       string    `json:"role"`
	UserID     string    `json:"userId"`
	ExpiresAt  time.Time `json:"expiresAt"`
	DeviceInfo string    `json:"deviceInfo"`
}

// SessionStore keeps per-role login sessions in two scopes. Clear removes a
// role's sessions from both scopes unconditionally.
type SessionStore interface {
	Save(ctx context.Context, scope Scope, creds SessionCredentials) (string, error)
	Get(ctx context.Context, role string, scope Scope, token string) (*SessionCredentials, error)
	Remove(ctx context.Context, role string, scope Scope, token string) error
	Clear(ctx context.Context, role string) error
}

// RedisSessionStore stores AES-GCM-encrypted credentials in Redis under
// role- and scope-prefixed keys.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(scope Scope, role, token string) string {
	return fmt.Sprintf("session:%s:%s:%s", scope, role, token)
}

func (s *RedisSessionStore) Save(ctx context.Context, scope Scope, creds SessionCredentials) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("redis client not available")
	}

	token, err := generateSessionToken()
	if err != nil {
		return "", err
	}

	ttl := sessionTTL
	if scope == ScopeDurable {
		ttl = durableTTL
	}
	creds.ExpiresAt = time.Now().Add(ttl)

	encrypted, err := encryptCredentials(creds)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt credentials: %w", err)
	}

	key := sessionKey(scope, creds.Role, token)
	if err := s.client.Set(ctx, key, encrypted, ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

func (s *RedisSessionStore) Get(ctx context.Context, role string, scope Scope, token string) (*SessionCredentials, error) {
	if s.client == nil {
		return nil, fmt.Errorf("redis client not available")
	}

	key := sessionKey(scope, role, token)
	encrypted, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("session token not found or expired")
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	creds, err := decryptCredentials(encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credentials: %w", err)
	}

	if time.Now().After(creds.ExpiresAt) {
		s.client.Del(ctx, key)
		return nil, fmt.Errorf("session token expired")
	}

	return creds, nil
}

func (s *RedisSessionStore) Remove(ctx context.Context, role string, scope Scope, token string) error {
	if s.client == nil {
		return fmt.Errorf("redis client not available")
	}
	return s.client.Del(ctx, sessionKey(scope, role, token)).Err()
}

// Clear deletes every stored session for a role in both scopes. Used at
// logout, which must wipe role state regardless of which scope held it.
func (s *RedisSessionStore) Clear(ctx context.Context, role string) error {
	if s.client == nil {
		return fmt.Errorf("redis client not available")
	}

	for _, scope := range []Scope{ScopeSession, ScopeDurable} {
		pattern := fmt.Sprintf("session:%s:%s:*", scope, role)
		keys, err := s.client.Keys(ctx, pattern).Result()
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to clear sessions: %w", err)
			}
		}
	}
	return nil
}

func generateSessionToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

func encryptionKey() []byte {
	key := os.Getenv("SESSION_ENCRYPTION_KEY")
	if key == "" {
		// Fallback to a default key (not recommended for production)
		key = "default-encryption-key-32-bytes-long"
	}
	if len(key) < 32 {
		key = key + "00000000000000000000000000000000"
	}
	return []byte(key[:32])
}

func encryptCredentials(creds SessionCredentials) (string, error) {
	jsonData, err := json.Marshal(creds)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(encryptionKey())
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, jsonData, nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func decryptCredentials(encrypted string) (*SessionCredentials, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(encryptionKey())
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, err
	}

	var creds SessionCredentials
	if err := json.Unmarshal(plaintext, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}
