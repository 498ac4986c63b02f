package automation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ziraweb/models"
)

func matchRule(id uint, mutate func(*models.AutomationRule)) models.AutomationRule {
	r := models.AutomationRule{
		Name:          "rule",
		TriggerType:   models.TriggerFormSubmission,
		IsActive:      true,
		FormType:      FormTypeContact,
		TemplateID:    1,
		RecipientType: models.RecipientAdmin,
	}
	r.ID = id
	if mutate != nil {
		mutate(&r)
	}
	return r
}

func TestMatchFiltersByStateAndTrigger(t *testing.T) {
	rules := []models.AutomationRule{
		matchRule(1, nil),
		matchRule(2, func(r *models.AutomationRule) { r.IsActive = false }),
		matchRule(3, func(r *models.AutomationRule) { r.TriggerType = models.TriggerTimeBased }),
		matchRule(4, func(r *models.AutomationRule) { r.FormType = FormTypeCareer }),
	}

	sub := NewSubmission("contact", nil)
	matched := Match(sub, rules)

	require.Len(t, matched, 1)
	assert.Equal(t, uint(1), matched[0].ID)
}

func TestMatchProductFilter(t *testing.T) {
	rules := []models.AutomationRule{
		matchRule(1, nil), // product-agnostic
		matchRule(2, func(r *models.AutomationRule) { r.FormProduct = "zira_sms" }),
		matchRule(3, func(r *models.AutomationRule) { r.FormProduct = "zira_homes" }),
	}

	// A product-tagged submission matches agnostic rules plus its own product.
	matched := Match(NewSubmission("demo_zira_sms", nil), rules)
	require.Len(t, matched, 2)
	assert.Equal(t, uint(1), matched[0].ID)
	assert.Equal(t, uint(2), matched[1].ID)

	// A submission without a product key only matches agnostic rules.
	matched = Match(NewSubmission("contact", nil), rules)
	require.Len(t, matched, 1)
	assert.Equal(t, uint(1), matched[0].ID)
}

func TestMatchCareerSubmission(t *testing.T) {
	rules := []models.AutomationRule{
		matchRule(1, nil),
		matchRule(2, func(r *models.AutomationRule) { r.FormType = FormTypeCareer }),
	}

	matched := Match(NewSubmission("job-application", nil), rules)
	require.Len(t, matched, 1)
	assert.Equal(t, uint(2), matched[0].ID)
}

func TestMatchEmptyRuleList(t *testing.T) {
	assert.Empty(t, Match(NewSubmission("contact", nil), nil))
}
