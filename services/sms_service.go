package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// SMSService sends login OTPs through the configured SMS gateway.
type SMSService struct {
	APIPath  string
	AuthKey  string
	SenderID string
	Client   *http.Client
}

// SMSResponse represents the response from the SMS gateway
type SMSResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		MessageID string `json:"message_id"`
	} `json:"data"`
}

// NewSMSService creates a new SMS service instance from environment config.
func NewSMSService() *SMSService {
	return &SMSService{
		APIPath:  os.Getenv("SMS_API_URL"),
		AuthKey:  os.Getenv("SMS_AUTH_KEY"),
		SenderID: getenvDefault("SMS_SENDER_ID", "MEDSTU"),
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Configured reports whether a gateway has been set up. Development
// environments run without one and log OTPs instead.
func (s *SMSService) Configured() bool {
	return s.APIPath != "" && s.AuthKey != ""
}

// SendOTP sends a login OTP to a 10-digit subscriber number.
func (s *SMSService) SendOTP(phone, otp string) error {
	if !s.Configured() {
		return fmt.Errorf("SMS gateway not configured")
	}

	message := fmt.Sprintf("Your Medisetu verification code is: %s. This code will expire in 10 minutes.", otp)

	params := url.Values{}
	params.Set("authkey", s.AuthKey)
	params.Set("sender", s.SenderID)
	params.Set("mobiles", "91"+phone)
	params.Set("message", message)
	params.Set("route", "4") // transactional route

	req, err := http.NewRequest(http.MethodPost, s.APIPath+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("SMS API returned status %d: %s", resp.StatusCode, string(body))
	}

	var smsResp SMSResponse
	if err := json.Unmarshal(body, &smsResp); err != nil {
		// Some gateways answer with a bare message id on success
		if strings.TrimSpace(string(body)) != "" {
			return nil
		}
		return fmt.Errorf("failed to parse SMS response: %w", err)
	}

	if smsResp.Status == "success" || smsResp.Status == "sent" || smsResp.Status == "" {
		return nil
	}

	return fmt.Errorf("SMS sending failed: %s", smsResp.Message)
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
