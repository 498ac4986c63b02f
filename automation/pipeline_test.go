package automation

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ziraweb/mailer"
	"ziraweb/models"
)

// memStore is an in-memory Store for pipeline tests.
type memStore struct {
	rules     []models.AutomationRule
	templates map[uint]*models.EmailTemplate
	senders   []models.EmailSender
	settings  map[string]string

	events    []*models.EmailEvent
	sentCount map[uint]int
	nextID    uint
}

func newMemStore() *memStore {
	return &memStore{
		templates: make(map[uint]*models.EmailTemplate),
		settings:  make(map[string]string),
		sentCount: make(map[uint]int),
	}
}

func (m *memStore) ActiveRules(_ context.Context) ([]models.AutomationRule, error) {
	var active []models.AutomationRule
	for _, r := range m.rules {
		if r.IsActive {
			active = append(active, r)
		}
	}
	return active, nil
}

func (m *memStore) Template(_ context.Context, id uint) (*models.EmailTemplate, error) {
	tpl, ok := m.templates[id]
	if !ok {
		return nil, errors.New("template not found")
	}
	return tpl, nil
}

func (m *memStore) ActiveSenders(_ context.Context) ([]models.EmailSender, error) {
	var active []models.EmailSender
	for _, s := range m.senders {
		if s.IsDefault && s.IsActive {
			active = append(active, s)
		}
	}
	for _, s := range m.senders {
		if !s.IsDefault && s.IsActive {
			active = append(active, s)
		}
	}
	return active, nil
}

func (m *memStore) Setting(_ context.Context, key string) (string, bool) {
	v, ok := m.settings[key]
	return v, ok
}

func (m *memStore) CreateEvent(_ context.Context, ev *models.EmailEvent) error {
	m.nextID++
	ev.ID = m.nextID
	m.events = append(m.events, ev)
	return nil
}

func (m *memStore) UpdateEvent(_ context.Context, ev *models.EmailEvent) error {
	for i, existing := range m.events {
		if existing.ID == ev.ID {
			m.events[i] = ev
			return nil
		}
	}
	return errors.New("event not found")
}

func (m *memStore) MarkRuleSent(_ context.Context, ruleID uint) error {
	m.sentCount[ruleID]++
	return nil
}

func (m *memStore) eventsByStatus(status string) []*models.EmailEvent {
	var out []*models.EmailEvent
	for _, ev := range m.events {
		if ev.Status == status {
			out = append(out, ev)
		}
	}
	return out
}

// mockProvider records sends and lets tests fail specific recipients.
type mockProvider struct {
	sent     []mailer.Message
	failFor  map[string]error
	verified map[string]bool
}

func newMockProvider() *mockProvider {
	return &mockProvider{
		failFor:  make(map[string]error),
		verified: make(map[string]bool),
	}
}

func (p *mockProvider) Send(_ context.Context, msg *mailer.Message) (string, error) {
	if err, ok := p.failFor[msg.To]; ok {
		return "", err
	}
	p.sent = append(p.sent, *msg)
	return "msg_test", nil
}

func (p *mockProvider) DomainVerified(_ context.Context, domain string) (bool, error) {
	return p.verified[domain], nil
}

func testPipeline(store *memStore, provider *mockProvider) *Pipeline {
	return NewPipeline(store, provider, log.New(io.Discard, "", 0))
}

func activeTemplate(id uint, subject, content string) *models.EmailTemplate {
	tpl := &models.EmailTemplate{Subject: subject, Content: content, IsActive: true}
	tpl.ID = id
	return tpl
}

func rule(id uint, name, formType, recipientType string, templateID uint) models.AutomationRule {
	r := models.AutomationRule{
		Name:          name,
		TriggerType:   models.TriggerFormSubmission,
		IsActive:      true,
		FormType:      formType,
		TemplateID:    templateID,
		RecipientType: recipientType,
	}
	r.ID = id
	return r
}

func TestProcessEndToEnd(t *testing.T) {
	store := newMemStore()
	provider := newMockProvider()

	store.templates[1] = activeTemplate(1, "Thanks {{name}}", "<div><p>Hi {{name}}, we got your application for {{position}}.</p></div>")
	store.rules = []models.AutomationRule{
		rule(1, "Career confirmation", FormTypeCareer, models.RecipientSubmitter, 1),
	}

	sub := NewSubmission("career", map[string]string{
		"name":     "Jane Doe",
		"email":    "jane@x.com",
		"position": "Engineer",
	})

	out := testPipeline(store, provider).Process(context.Background(), sub)

	require.Equal(t, 1, out.Matched)
	require.Equal(t, 1, out.Processed)
	require.Len(t, store.events, 1)

	ev := store.events[0]
	assert.Equal(t, models.EmailStatusSent, ev.Status)
	assert.Equal(t, "jane@x.com", ev.RecipientEmail)
	assert.Equal(t, "Thanks Jane Doe", ev.Subject)
	assert.Equal(t, "msg_test", ev.ProviderMessageID)
	assert.NotNil(t, ev.SentAt)
	assert.Equal(t, 1, store.sentCount[1])
}

func TestProcessRuleIsolation(t *testing.T) {
	store := newMemStore()
	provider := newMockProvider()

	store.templates[1] = activeTemplate(1, "Thanks", "<div>ok</div>")
	store.templates[2] = activeTemplate(2, "New submission", "<div>{{all_fields}}</div>")
	store.rules = []models.AutomationRule{
		rule(1, "Submitter confirmation", FormTypeContact, models.RecipientSubmitter, 1),
		rule(2, "Admin notification", FormTypeContact, models.RecipientAdmin, 2),
	}
	store.settings[models.SettingAdminRecipients] = "team@ziratech.com"

	// No email field: the submitter rule fails, the admin rule proceeds.
	sub := NewSubmission("contact", map[string]string{"name": "Anonymous"})

	out := testPipeline(store, provider).Process(context.Background(), sub)

	assert.Equal(t, 2, out.Matched)
	assert.Equal(t, 1, out.Processed)

	failed := store.eventsByStatus(models.EmailStatusFailed)
	sent := store.eventsByStatus(models.EmailStatusSent)
	require.Len(t, failed, 1)
	require.Len(t, sent, 1)
	assert.Equal(t, uint(1), failed[0].RuleID)
	require.NotNil(t, failed[0].ErrorMessage)
	assert.Equal(t, uint(2), sent[0].RuleID)
	assert.Equal(t, "team@ziratech.com", sent[0].RecipientEmail)

	// Failed rule never bumps its counter.
	assert.Equal(t, 0, store.sentCount[1])
	assert.Equal(t, 1, store.sentCount[2])
}

func TestProcessProviderFailureIsContained(t *testing.T) {
	store := newMemStore()
	provider := newMockProvider()
	provider.failFor["broken@x.com"] = errors.New("provider unavailable")

	store.templates[1] = activeTemplate(1, "Hi", "<div>ok</div>")
	store.rules = []models.AutomationRule{
		rule(1, "Confirmation", FormTypeContact, models.RecipientSubmitter, 1),
	}

	sub := NewSubmission("contact", map[string]string{"name": "X", "email": "broken@x.com"})
	out := testPipeline(store, provider).Process(context.Background(), sub)

	assert.Equal(t, 1, out.Matched)
	assert.Equal(t, 0, out.Processed)

	failed := store.eventsByStatus(models.EmailStatusFailed)
	require.Len(t, failed, 1)
	require.NotNil(t, failed[0].ErrorMessage)
	assert.Contains(t, *failed[0].ErrorMessage, "provider unavailable")
	assert.Equal(t, 0, store.sentCount[1])
}

func TestProcessSkipsMissingTemplate(t *testing.T) {
	store := newMemStore()
	provider := newMockProvider()

	store.rules = []models.AutomationRule{
		rule(1, "Orphan rule", FormTypeContact, models.RecipientSubmitter, 99),
	}

	sub := NewSubmission("contact", map[string]string{"name": "X", "email": "x@x.com"})
	out := testPipeline(store, provider).Process(context.Background(), sub)

	assert.Equal(t, 1, out.Matched)
	assert.Equal(t, 0, out.Processed)
	// Configuration problems skip the rule without an audit row.
	assert.Empty(t, store.events)
	assert.Empty(t, provider.sent)
}

func TestProcessZeroMatchesIsNormal(t *testing.T) {
	store := newMemStore()
	out := testPipeline(store, newMockProvider()).Process(context.Background(),
		NewSubmission("contact", map[string]string{"name": "X", "email": "x@x.com"}))
	assert.Equal(t, 0, out.Matched)
	assert.Equal(t, 0, out.Processed)
	assert.Empty(t, out.Results)
}

func TestDispatchTrackingFlags(t *testing.T) {
	store := newMemStore()
	provider := newMockProvider()

	store.templates[1] = activeTemplate(1, "Hi", "<div>ok</div>")
	store.templates[2] = activeTemplate(2, "New", "<div>{{all_fields}}</div>")
	store.rules = []models.AutomationRule{
		rule(1, "Confirmation", FormTypeContact, models.RecipientSubmitter, 1),
		rule(2, "Notification", FormTypeContact, models.RecipientAdmin, 2),
	}
	store.settings[models.SettingAdminRecipients] = "team@ziratech.com"

	sub := NewSubmission("contact", map[string]string{"name": "X", "email": "x@x.com"})
	testPipeline(store, provider).Process(context.Background(), sub)

	require.Len(t, provider.sent, 2)
	for _, msg := range provider.sent {
		if msg.To == "x@x.com" {
			assert.False(t, msg.TrackOpens, "submitter email must not be tracked")
			assert.False(t, msg.TrackClicks)
		} else {
			assert.True(t, msg.TrackOpens)
			assert.True(t, msg.TrackClicks)
		}
	}
}

func TestDispatchDelayedRuleQueuesPendingEvent(t *testing.T) {
	store := newMemStore()
	provider := newMockProvider()

	store.templates[1] = activeTemplate(1, "Hi {{name}}", "<div>ok</div>")
	delayed := rule(1, "Delayed follow-up", FormTypeContact, models.RecipientSubmitter, 1)
	delayed.DelayMinutes = 30
	store.rules = []models.AutomationRule{delayed}

	sub := NewSubmission("contact", map[string]string{"name": "X", "email": "x@x.com"})
	pipeline := testPipeline(store, provider)
	out := pipeline.Process(context.Background(), sub)

	assert.Equal(t, 1, out.Processed)
	require.Len(t, store.events, 1)
	ev := store.events[0]
	assert.Equal(t, models.EmailStatusPending, ev.Status)
	require.NotNil(t, ev.SendAt)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), *ev.SendAt, time.Minute)
	assert.Empty(t, provider.sent, "delayed events are not sent inline")
	assert.Equal(t, 0, store.sentCount[1])

	// Worker path: delivering the pending event completes it and bumps the
	// rule counter.
	require.NoError(t, pipeline.Dispatcher().Deliver(context.Background(), ev))
	assert.Equal(t, models.EmailStatusSent, ev.Status)
	assert.Len(t, provider.sent, 1)
	assert.Equal(t, 1, store.sentCount[1])
}

func TestResolveSenderPrefersVerifiedDefault(t *testing.T) {
	store := newMemStore()
	provider := newMockProvider()
	provider.verified["ziratech.com"] = true

	def := models.EmailSender{FromName: "Ziratech Team", FromEmail: "hello@ziratech.com", IsDefault: true, IsActive: true}
	def.ID = 1
	store.senders = []models.EmailSender{def}

	d := NewDispatcher(store, provider)
	identity := d.ResolveSender(context.Background())
	assert.Equal(t, "hello@ziratech.com", identity.FromEmail)
	assert.Equal(t, "Ziratech Team", identity.FromName)
}

func TestResolveSenderFallsBackToSandbox(t *testing.T) {
	store := newMemStore()
	provider := newMockProvider() // nothing verified

	def := models.EmailSender{FromName: "Ziratech Team", FromEmail: "hello@unverified.example", IsDefault: true, IsActive: true}
	def.ID = 1
	store.senders = []models.EmailSender{def}

	d := NewDispatcher(store, provider)
	identity := d.ResolveSender(context.Background())
	assert.Equal(t, mailer.SandboxAddress, identity.FromEmail)
	// The configured display name survives the sandbox fallback.
	assert.Equal(t, "Ziratech Team", identity.FromName)
}

func TestResolveSenderWithNoSenders(t *testing.T) {
	d := NewDispatcher(newMemStore(), newMockProvider())
	identity := d.ResolveSender(context.Background())
	assert.Equal(t, mailer.SandboxAddress, identity.FromEmail)
	assert.Equal(t, DefaultFromName, identity.FromName)
}
