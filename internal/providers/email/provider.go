package email

import "context"

// Provider delivers outbound email.
type Provider interface {
	Send(ctx context.Context, to []string, subject string, body string) error
}

// NoOpProvider swallows sends; used when SMTP is not configured.
type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, to []string, subject string, body string) error {
	return nil
}
