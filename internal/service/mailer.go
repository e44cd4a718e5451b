package service

import (
	"context"

	"github.com/rs/zerolog"
)

// SwapMailData carries the fields rendered into swap lifecycle mails.
type SwapMailData struct {
	RecipientName string
	SenderName    string
	SkillToTeach  string
	SkillToLearn  string
	Message       string
	RequestID     uint
}

// Mailer delivers outbound notification mail. Delivery is best effort
// everywhere: callers log failures and continue.
type Mailer interface {
	Welcome(ctx context.Context, to, name, temporaryPassword, verificationToken string) error
	VerificationSuccess(ctx context.Context, to, name string) error
	PasswordReset(ctx context.Context, to, name, resetToken string) error
	SwapRequestReceived(ctx context.Context, to string, data SwapMailData) error
	SwapRequestAccepted(ctx context.Context, to string, data SwapMailData) error
	SwapRequestDeclined(ctx context.Context, to string, data SwapMailData) error
}

// LogMailer is the default provider; it records deliveries in the log
// instead of talking to an SMTP relay.
type LogMailer struct {
	from   string
	logger zerolog.Logger
}

// NewLogMailer constructs a logging mail provider.
func NewLogMailer(from string, logger zerolog.Logger) *LogMailer {
	return &LogMailer{
		from:   from,
		logger: logger.With().Str("component", "mailer").Logger(),
	}
}

// Welcome logs the registration mail carrying the temporary password and
// verification link.
func (m *LogMailer) Welcome(ctx context.Context, to, name, temporaryPassword, verificationToken string) error {
	m.logger.Info().
		Str("from", m.from).
		Str("to", to).
		Str("name", name).
		Str("verification_token", verificationToken).
		Msg("welcome mail delivered")
	return nil
}

// VerificationSuccess logs the post-verification confirmation mail.
func (m *LogMailer) VerificationSuccess(ctx context.Context, to, name string) error {
	m.logger.Info().Str("from", m.from).Str("to", to).Msg("verification success mail delivered")
	return nil
}

// PasswordReset logs the password reset mail.
func (m *LogMailer) PasswordReset(ctx context.Context, to, name, resetToken string) error {
	m.logger.Info().Str("from", m.from).Str("to", to).Msg("password reset mail delivered")
	return nil
}

// SwapRequestReceived logs the new-request notification mail.
func (m *LogMailer) SwapRequestReceived(ctx context.Context, to string, data SwapMailData) error {
	m.logger.Info().
		Str("from", m.from).
		Str("to", to).
		Str("sender", data.SenderName).
		Uint("request_id", data.RequestID).
		Msg("swap request mail delivered")
	return nil
}

// SwapRequestAccepted logs the acceptance notification mail.
func (m *LogMailer) SwapRequestAccepted(ctx context.Context, to string, data SwapMailData) error {
	m.logger.Info().
		Str("from", m.from).
		Str("to", to).
		Str("recipient", data.RecipientName).
		Uint("request_id", data.RequestID).
		Msg("swap accepted mail delivered")
	return nil
}

// SwapRequestDeclined logs the decline notification mail.
func (m *LogMailer) SwapRequestDeclined(ctx context.Context, to string, data SwapMailData) error {
	m.logger.Info().
		Str("from", m.from).
		Str("to", to).
		Str("recipient", data.RecipientName).
		Uint("request_id", data.RequestID).
		Msg("swap declined mail delivered")
	return nil
}
