package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/resendlabs/resend-go"
)

// ResendEmailSender delivers the transactional emails through the Resend API.
// The reset link embeds the token as a path segment under the client base URL.
type ResendEmailSender struct {
	Client        *resend.Client
	From          string
	ClientBaseURL string
	ResetPath     string
}

func NewResendEmailSender(apiKey string, from string, clientBaseURL string) *ResendEmailSender {
	return &ResendEmailSender{
		Client:        resend.NewClient(apiKey),
		From:          from,
		ClientBaseURL: strings.TrimRight(clientBaseURL, "/"),
		ResetPath:     "/reset-password",
	}
}

func (s *ResendEmailSender) SendVerificationEmail(ctx context.Context, email string, name string, code string) error {
	subject := "Verify your email"
	html := fmt.Sprintf("<p>Hi %s,</p><p>Your verification code is:</p><h2>%s</h2><p>It expires in 5 minutes.</p>", name, code)
	text := fmt.Sprintf("Hi %s, your verification code is %s. It expires in 5 minutes.", name, code)
	return s.send(ctx, email, subject, html, text)
}

func (s *ResendEmailSender) SendWelcomeEmail(ctx context.Context, email string, name string) error {
	subject := "Welcome aboard"
	html := fmt.Sprintf("<p>Hi %s,</p><p>Your email has been verified. Welcome!</p>", name)
	text := fmt.Sprintf("Hi %s, your email has been verified. Welcome!", name)
	return s.send(ctx, email, subject, html, text)
}

func (s *ResendEmailSender) SendPasswordResetEmail(ctx context.Context, email string, token string) error {
	link := s.resetLink(token)
	subject := "Reset your password"
	html := fmt.Sprintf("<p>Click to reset your password:</p><p><a href=\"%s\">Reset Password</a></p><p>The link expires in 1 hour.</p>", link)
	text := fmt.Sprintf("Reset your password: %s (expires in 1 hour)", link)
	return s.send(ctx, email, subject, html, text)
}

func (s *ResendEmailSender) SendPasswordResetSuccessEmail(ctx context.Context, email string) error {
	subject := "Your password was changed"
	html := "<p>Your password has been reset successfully.</p><p>If this wasn't you, contact support immediately.</p>"
	text := "Your password has been reset successfully. If this wasn't you, contact support immediately."
	return s.send(ctx, email, subject, html, text)
}

func (s *ResendEmailSender) resetLink(token string) string {
	if s.ClientBaseURL == "" {
		return token
	}
	return fmt.Sprintf("%s%s/%s", s.ClientBaseURL, s.ResetPath, token)
}

func (s *ResendEmailSender) send(ctx context.Context, to string, subject string, html string, text string) error {
	// Emails.Send takes no context at this SDK version; checking here is the
	// closest cancellation can get to the call.
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.Client == nil {
		return fmt.Errorf("email sender not configured")
	}
	params := &resend.SendEmailRequest{
		From:    s.From,
		To:      []string{to},
		Subject: subject,
		Html:    html,
		Text:    text,
	}
	if _, err := s.Client.Emails.Send(params); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
