// utils/otp.go
package utils

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/go-redis/redis/v8"
)

// GenerateNumericOTP returns a cryptographically random numeric code.
func GenerateNumericOTP(length int) (string, error) {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}

// ValidateOTPAttempts limits OTP requests to 5 per hour per phone number.
func ValidateOTPAttempts(phone string, redisClient *redis.Client) error {
	if redisClient == nil {
		return nil
	}

	key := "otp_attempts:" + phone
	attempts, err := redisClient.Incr(context.Background(), key).Result()
	if err != nil {
		return err
	}

	// Set expiry if first attempt
	if attempts == 1 {
		redisClient.Expire(context.Background(), key, 1*time.Hour)
	}

	if attempts > 5 {
		return errors.New("too many OTP attempts")
	}

	return nil
}

// ClearOTPAttempts resets the counter after a successful login.
func ClearOTPAttempts(phone string, redisClient *redis.Client) {
	if redisClient == nil {
		return
	}
	redisClient.Del(context.Background(), "otp_attempts:"+phone)
}
