package automation

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	"ziraweb/mailer"
	"ziraweb/models"
)

// DefaultFromName is used when no sender row supplies one.
const DefaultFromName = "Ziratech"

// Dispatcher resolves the sending identity, hands rendered email to the
// provider and records the outcome as an EmailEvent. One event row is
// written per (rule, submission) attempt; there is no retry.
type Dispatcher struct {
	store    Store
	provider mailer.Provider
}

func NewDispatcher(store Store, provider mailer.Provider) *Dispatcher {
	return &Dispatcher{store: store, provider: provider}
}

// SenderIdentity is the resolved from/reply-to identity for a send.
type SenderIdentity struct {
	FromName  string
	FromEmail string
	ReplyTo   string
}

// ResolveSender picks the from-identity: the default active sender whose
// domain is verified with the provider, else the first verified active
// sender, else the provider's sandbox address keeping the configured from
// name. Verification errors are treated as unverified.
func (d *Dispatcher) ResolveSender(ctx context.Context) SenderIdentity {
	identity := SenderIdentity{
		FromName:  DefaultFromName,
		FromEmail: mailer.SandboxAddress,
	}

	senders, err := d.store.ActiveSenders(ctx)
	if err != nil || len(senders) == 0 {
		return identity
	}

	// Senders arrive defaults-first, so the first verified hit honors the
	// default preference.
	identity.FromName = senders[0].FromName
	identity.ReplyTo = senders[0].ReplyTo
	for _, s := range senders {
		verified := s.DomainVerified
		if !verified {
			verified, err = d.provider.DomainVerified(ctx, s.Domain())
			if err != nil {
				verified = false
			}
		}
		if verified {
			identity.FromName = s.FromName
			identity.FromEmail = s.FromEmail
			identity.ReplyTo = s.ReplyTo
			break
		}
	}
	return identity
}

// Dispatch sends the rendered email (or queues it when the rule carries a
// delay) and writes the audit event. The returned event reflects the final
// status; errors never propagate beyond the event row.
func (d *Dispatcher) Dispatch(ctx context.Context, rule *models.AutomationRule, sub Submission, recipient string, rendered Rendered) *models.EmailEvent {
	identity := d.ResolveSender(ctx)

	// Submitter confirmations go out clean, without engagement tracking.
	tracking := rule.RecipientType != models.RecipientSubmitter

	ev := &models.EmailEvent{
		RuleID:         rule.ID,
		TemplateID:     rule.TemplateID,
		SubmissionID:   sub.ID,
		RecipientEmail: recipient,
		Subject:        rendered.Subject,
		HTML:           rendered.HTML,
		Text:           rendered.Text,
		FromName:       identity.FromName,
		FromEmail:      identity.FromEmail,
		ReplyTo:        identity.ReplyTo,
		Tracking:       tracking,
	}

	if rule.DelayMinutes > 0 {
		due := time.Now().Add(time.Duration(rule.DelayMinutes) * time.Minute)
		ev.Status = models.EmailStatusPending
		ev.SendAt = &due
		if err := d.store.CreateEvent(ctx, ev); err != nil {
			logrus.WithError(err).WithField("rule_id", rule.ID).Error("failed to queue delayed email event")
		}
		return ev
	}

	d.deliver(ctx, ev)
	if err := d.store.CreateEvent(ctx, ev); err != nil {
		logrus.WithError(err).WithField("rule_id", rule.ID).Error("failed to record email event")
	}
	if ev.Status == models.EmailStatusSent {
		if err := d.store.MarkRuleSent(ctx, rule.ID); err != nil {
			logrus.WithError(err).WithField("rule_id", rule.ID).Warn("failed to bump rule sent counter")
		}
	}
	return ev
}

// Deliver sends a previously queued pending event and persists the outcome.
// Used by the dispatch worker once a delayed event comes due.
func (d *Dispatcher) Deliver(ctx context.Context, ev *models.EmailEvent) error {
	d.deliver(ctx, ev)
	if err := d.store.UpdateEvent(ctx, ev); err != nil {
		return err
	}
	if ev.Status == models.EmailStatusSent && ev.RuleID != 0 {
		if err := d.store.MarkRuleSent(ctx, ev.RuleID); err != nil {
			logrus.WithError(err).WithField("rule_id", ev.RuleID).Warn("failed to bump rule sent counter")
		}
	}
	return nil
}

// deliver performs the provider call and stamps the event in place.
func (d *Dispatcher) deliver(ctx context.Context, ev *models.EmailEvent) {
	msg := &mailer.Message{
		FromName:    ev.FromName,
		FromEmail:   ev.FromEmail,
		To:          ev.RecipientEmail,
		ReplyTo:     ev.ReplyTo,
		Subject:     ev.Subject,
		HTML:        ev.HTML,
		Text:        ev.Text,
		TrackOpens:  ev.Tracking,
		TrackClicks: ev.Tracking,
	}

	messageID, err := d.provider.Send(ctx, msg)
	now := time.Now()
	if err != nil {
		errMsg := err.Error()
		ev.Status = models.EmailStatusFailed
		ev.ErrorMessage = &errMsg
		logrus.WithError(err).WithFields(logrus.Fields{
			"rule_id":   ev.RuleID,
			"recipient": ev.RecipientEmail,
		}).Error("email dispatch failed")
		sentry.CaptureException(err)
		return
	}

	ev.Status = models.EmailStatusSent
	ev.ProviderMessageID = messageID
	ev.SentAt = &now
}
