package automation

import (
	"context"
	"errors"
	"log"

	"ziraweb/mailer"
	"ziraweb/models"
)

// RuleResult is the outcome of one rule's resolve/render/dispatch run.
type RuleResult struct {
	RuleID   uint
	RuleName string
	Event    *models.EmailEvent
	Err      error
}

// Outcome summarizes a submission's trip through the pipeline.
type Outcome struct {
	Matched   int
	Processed int
	Results   []RuleResult
}

// Pipeline runs form submissions through rule matching, recipient
// resolution, template rendering and dispatch. Each matched rule is an
// isolated unit of work: a failure in one never aborts the others, and the
// caller always gets a summary rather than an error.
type Pipeline struct {
	store      Store
	resolver   *Resolver
	dispatcher *Dispatcher
	logger     *log.Logger
}

func NewPipeline(store Store, provider mailer.Provider, logger *log.Logger) *Pipeline {
	return &Pipeline{
		store:      store,
		resolver:   NewResolver(store),
		dispatcher: NewDispatcher(store, provider),
		logger:     logger,
	}
}

// Dispatcher exposes the pipeline's dispatcher for the delayed-send worker.
func (p *Pipeline) Dispatcher() *Dispatcher {
	return p.dispatcher
}

// Process fetches the active rules once, matches them against the
// submission and runs each matched rule to completion. Zero matches is a
// normal outcome. Configuration problems (missing or inactive template)
// skip the rule with a log line; recipient and provider failures are
// recorded as failed events.
func (p *Pipeline) Process(ctx context.Context, sub Submission) Outcome {
	rules, err := p.store.ActiveRules(ctx)
	if err != nil {
		p.logger.Printf("failed to load automation rules: %v", err)
		return Outcome{}
	}

	matched := Match(sub, rules)
	out := Outcome{Matched: len(matched)}

	for i := range matched {
		rule := &matched[i]
		result := p.processRule(ctx, rule, sub)
		if result.Err == nil {
			out.Processed++
		}
		out.Results = append(out.Results, result)
	}

	p.logger.Printf("submission %d (%s): processed %d of %d matched rules",
		sub.ID, sub.CanonicalType, out.Processed, out.Matched)
	return out
}

func (p *Pipeline) processRule(ctx context.Context, rule *models.AutomationRule, sub Submission) RuleResult {
	result := RuleResult{RuleID: rule.ID, RuleName: rule.Name}

	tpl, err := p.store.Template(ctx, rule.TemplateID)
	if err != nil {
		p.logger.Printf("rule %q: template %d not found, skipping: %v", rule.Name, rule.TemplateID, err)
		result.Err = err
		return result
	}
	if !tpl.IsActive {
		p.logger.Printf("rule %q: template %q is inactive, skipping", rule.Name, tpl.Name)
		result.Err = errors.New("template is inactive")
		return result
	}

	recipient, err := p.resolver.Resolve(ctx, rule, sub)
	if err != nil {
		p.logger.Printf("rule %q: recipient resolution failed: %v", rule.Name, err)
		result.Err = err
		result.Event = p.recordResolutionFailure(ctx, rule, sub, err)
		return result
	}

	forAdmin := rule.RecipientType != models.RecipientSubmitter
	rendered := Render(tpl, sub, forAdmin)

	result.Event = p.dispatcher.Dispatch(ctx, rule, sub, recipient, rendered)
	if result.Event.Status == models.EmailStatusFailed {
		if result.Event.ErrorMessage != nil {
			result.Err = errors.New(*result.Event.ErrorMessage)
		} else {
			result.Err = errors.New("dispatch failed")
		}
	}
	return result
}

// recordResolutionFailure writes the audit row for a rule whose recipient
// could not be determined, so the event log shows every attempt.
func (p *Pipeline) recordResolutionFailure(ctx context.Context, rule *models.AutomationRule, sub Submission, cause error) *models.EmailEvent {
	errMsg := cause.Error()
	ev := &models.EmailEvent{
		RuleID:       rule.ID,
		TemplateID:   rule.TemplateID,
		SubmissionID: sub.ID,
		Status:       models.EmailStatusFailed,
		ErrorMessage: &errMsg,
	}
	if err := p.store.CreateEvent(ctx, ev); err != nil {
		p.logger.Printf("rule %q: failed to record resolution failure: %v", rule.Name, err)
	}
	return ev
}
