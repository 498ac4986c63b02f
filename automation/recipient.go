package automation

import (
	"context"
	"errors"
	"strings"

	"github.com/badoux/checkmail"

	"ziraweb/mailer"
	"ziraweb/models"
)

// ErrMissingSubmitterEmail is returned when a submitter-recipient rule runs
// against a submission without a usable email field.
var ErrMissingSubmitterEmail = errors.New("submission has no submitter email")

// FallbackRecipient is the last-resort admin address. The admin resolution
// chain always terminates here, so admin-recipient rules never fail to
// resolve.
const FallbackRecipient = "info@ziratech.com"

// Resolver determines the destination address for a matched rule.
type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve applies the rule's recipient policy. Submitter rules read the
// submission's email field and fail if it is absent or malformed. Custom
// rules use the rule's address when usable, otherwise they fall through to
// the admin chain. Admin rules walk an ordered fallback chain and always
// return an address.
func (r *Resolver) Resolve(ctx context.Context, rule *models.AutomationRule, sub Submission) (string, error) {
	switch rule.RecipientType {
	case models.RecipientSubmitter:
		email := strings.TrimSpace(sub.Field("email"))
		if email == "" || checkmail.ValidateFormat(email) != nil {
			return "", ErrMissingSubmitterEmail
		}
		return email, nil

	case models.RecipientCustom, models.RecipientAdmin:
		return r.resolveAdmin(ctx, rule), nil

	default:
		// Unknown policies get the safe behavior: notify the team.
		return r.resolveAdmin(ctx, rule), nil
	}
}

// resolveAdmin walks the fallback tiers in precedence order and returns the
// first usable address. The final tier is a constant, so this never fails.
func (r *Resolver) resolveAdmin(ctx context.Context, rule *models.AutomationRule) string {
	tiers := []func() string{
		func() string { return rule.CustomRecipient },
		func() string { return r.firstConfiguredAdmin(ctx) },
		func() string { return r.senderReplyAddress(ctx) },
		func() string {
			value, _ := r.store.Setting(ctx, models.SettingReplyTo)
			return value
		},
	}

	for _, tier := range tiers {
		if addr := strings.TrimSpace(tier()); usable(addr) {
			return addr
		}
	}
	return FallbackRecipient
}

// firstConfiguredAdmin reads the admin_recipients setting, a newline or
// comma separated list, and returns its first usable entry.
func (r *Resolver) firstConfiguredAdmin(ctx context.Context) string {
	value, ok := r.store.Setting(ctx, models.SettingAdminRecipients)
	if !ok {
		return ""
	}
	for _, entry := range strings.FieldsFunc(value, func(c rune) bool {
		return c == '\n' || c == ','
	}) {
		if addr := strings.TrimSpace(entry); usable(addr) {
			return addr
		}
	}
	return ""
}

// senderReplyAddress picks an address off the active sender list, preferring
// the default sender and each sender's reply-to over its from address.
func (r *Resolver) senderReplyAddress(ctx context.Context) string {
	senders, err := r.store.ActiveSenders(ctx)
	if err != nil {
		return ""
	}
	for _, s := range senders {
		if usable(s.ReplyTo) {
			return s.ReplyTo
		}
		if usable(s.FromEmail) {
			return s.FromEmail
		}
	}
	return ""
}

// usable reports whether an address can be used as a real recipient: well
// formed and not on the provider's sandbox-only domain.
func usable(addr string) bool {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return false
	}
	if checkmail.ValidateFormat(addr) != nil {
		return false
	}
	return !strings.HasSuffix(strings.ToLower(addr), "@"+mailer.SandboxDomain) &&
		!strings.HasSuffix(strings.ToLower(addr), "."+mailer.SandboxDomain)
}
