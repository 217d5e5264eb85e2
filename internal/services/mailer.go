package services

import "github.com/rs/zerolog/log"

// Mailer is the outbound email collaborator. Delivery mechanics live outside
// this service; the default implementation just records what would be sent.
type Mailer interface {
	SendVerification(email, token string) error
	SendPasswordReset(email, token string) error
}

type LogMailer struct{}

func (LogMailer) SendVerification(email, token string) error {
	log.Info().Str("module", "services.mailer").Str("email", email).Str("token", token).Msg("verification email")
	return nil
}

func (LogMailer) SendPasswordReset(email, token string) error {
	log.Info().Str("module", "services.mailer").Str("email", email).Str("token", token).Msg("password reset email")
	return nil
}
