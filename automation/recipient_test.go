package automation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ziraweb/models"
)

func resolverRule(recipientType, custom string) *models.AutomationRule {
	return &models.AutomationRule{
		Name:            "rule",
		TriggerType:     models.TriggerFormSubmission,
		IsActive:        true,
		FormType:        FormTypeContact,
		RecipientType:   recipientType,
		CustomRecipient: custom,
	}
}

func TestResolveSubmitter(t *testing.T) {
	r := NewResolver(newMemStore())
	rule := resolverRule(models.RecipientSubmitter, "")

	addr, err := r.Resolve(context.Background(), rule, NewSubmission("contact", map[string]string{"email": "jane@x.com"}))
	require.NoError(t, err)
	assert.Equal(t, "jane@x.com", addr)

	// Leading and trailing whitespace is tolerated.
	addr, err = r.Resolve(context.Background(), rule, NewSubmission("contact", map[string]string{"email": "  jane@x.com  "}))
	require.NoError(t, err)
	assert.Equal(t, "jane@x.com", addr)
}

func TestResolveSubmitterMissingEmail(t *testing.T) {
	r := NewResolver(newMemStore())
	rule := resolverRule(models.RecipientSubmitter, "")

	_, err := r.Resolve(context.Background(), rule, NewSubmission("contact", map[string]string{"name": "Jane"}))
	assert.ErrorIs(t, err, ErrMissingSubmitterEmail)

	_, err = r.Resolve(context.Background(), rule, NewSubmission("contact", map[string]string{"email": "not-an-email"}))
	assert.ErrorIs(t, err, ErrMissingSubmitterEmail)
}

func TestResolveCustomRecipient(t *testing.T) {
	r := NewResolver(newMemStore())

	addr, err := r.Resolve(context.Background(), resolverRule(models.RecipientCustom, "sales@ziratech.com"),
		NewSubmission("contact", nil))
	require.NoError(t, err)
	assert.Equal(t, "sales@ziratech.com", addr)
}

func TestResolveCustomFallsThroughToAdminChain(t *testing.T) {
	store := newMemStore()
	store.settings[models.SettingAdminRecipients] = "team@ziratech.com"
	r := NewResolver(store)

	// An empty custom address falls through to the configured admin list.
	addr, err := r.Resolve(context.Background(), resolverRule(models.RecipientCustom, ""),
		NewSubmission("contact", nil))
	require.NoError(t, err)
	assert.Equal(t, "team@ziratech.com", addr)
}

func TestResolveAdminChainOrder(t *testing.T) {
	ctx := context.Background()

	// Tier 1: configured admin recipients, first usable entry wins.
	store := newMemStore()
	store.settings[models.SettingAdminRecipients] = "bad-entry\nfirst@ziratech.com, second@ziratech.com"
	addr, err := NewResolver(store).Resolve(ctx, resolverRule(models.RecipientAdmin, ""), NewSubmission("contact", nil))
	require.NoError(t, err)
	assert.Equal(t, "first@ziratech.com", addr)

	// Tier 2: sender reply-to, preferred over the from address.
	store = newMemStore()
	sender := models.EmailSender{FromName: "Ziratech", FromEmail: "hello@ziratech.com", ReplyTo: "replies@ziratech.com", IsDefault: true, IsActive: true}
	sender.ID = 1
	store.senders = []models.EmailSender{sender}
	addr, err = NewResolver(store).Resolve(ctx, resolverRule(models.RecipientAdmin, ""), NewSubmission("contact", nil))
	require.NoError(t, err)
	assert.Equal(t, "replies@ziratech.com", addr)

	// Tier 3: the reply_to site setting.
	store = newMemStore()
	store.settings[models.SettingReplyTo] = "inbox@ziratech.com"
	addr, err = NewResolver(store).Resolve(ctx, resolverRule(models.RecipientAdmin, ""), NewSubmission("contact", nil))
	require.NoError(t, err)
	assert.Equal(t, "inbox@ziratech.com", addr)

	// Final tier: the hardcoded fallback, so admin rules never fail.
	store = newMemStore()
	addr, err = NewResolver(store).Resolve(ctx, resolverRule(models.RecipientAdmin, ""), NewSubmission("contact", nil))
	require.NoError(t, err)
	assert.Equal(t, FallbackRecipient, addr)
}

func TestResolveAdminSkipsSandboxAddresses(t *testing.T) {
	store := newMemStore()
	store.settings[models.SettingAdminRecipients] = "test@resend.dev"
	store.settings[models.SettingReplyTo] = "onboarding@resend.dev"
	sender := models.EmailSender{FromName: "Sandbox", FromEmail: "noreply@resend.dev", ReplyTo: "reply@resend.dev", IsDefault: true, IsActive: true}
	sender.ID = 1
	store.senders = []models.EmailSender{sender}

	// Every configured tier is a sandbox address, so resolution lands on the
	// fallback instead of leaking sandbox recipients.
	addr, err := NewResolver(store).Resolve(context.Background(),
		resolverRule(models.RecipientAdmin, "sandbox@resend.dev"), NewSubmission("contact", nil))
	require.NoError(t, err)
	assert.Equal(t, FallbackRecipient, addr)
}
