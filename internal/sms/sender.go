package sms

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Sender delivers a text message to a national mobile number
type Sender interface {
	Send(ctx context.Context, mobile, message string) error
}

// OTPMessage renders the message body for a one-time code
func OTPMessage(code string) string {
	return fmt.Sprintf("Your OTP for Tenancy App is: %s. Valid for 10 minutes. Do not share.", code)
}

// LogSender writes messages to the log instead of delivering them
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a LogSender
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the message and reports success
func (s *LogSender) Send(ctx context.Context, mobile, message string) error {
	s.logger.Info("SMS (not delivered)",
		zap.String("mobile", mobile),
		zap.String("message", message),
	)
	return nil
}
