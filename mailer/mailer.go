package mailer

import "context"

// SandboxDomain is the provider's built-in testing-only sender domain.
// Addresses on this domain are usable as a fallback from-identity but are
// never acceptable as a real recipient or reply-to.
const SandboxDomain = "resend.dev"

// SandboxAddress is the provider-issued sender usable before any custom
// domain has been verified.
const SandboxAddress = "onboarding@resend.dev"

// Message is a single transactional email handed to a Provider.
type Message struct {
	FromName  string
	FromEmail string
	To        string
	ReplyTo   string
	Subject   string
	HTML      string
	Text      string

	// TrackOpens/TrackClicks toggle provider-side engagement tracking.
	// Submitter-facing confirmations are sent with both disabled.
	TrackOpens  bool
	TrackClicks bool
}

// Provider sends transactional email and answers domain-verification
// queries. Implementations: Resend HTTP API, SMTP fallback, test mock.
type Provider interface {
	// Send delivers the message and returns the provider's message id.
	Send(ctx context.Context, msg *Message) (string, error)

	// DomainVerified reports whether the given sending domain is verified
	// with the provider.
	DomainVerified(ctx context.Context, domain string) (bool, error)
}
