package automation

import "ziraweb/models"

// Match filters the rule list down to the rules triggered by the given
// submission. Pure function, no side effects; zero matches is a normal
// outcome. Rules match when they are active, triggered by form submissions,
// and their form_type condition equals the submission's canonical type. A
// rule with a form_product condition additionally requires the submission's
// product key to match; a rule without one is product-agnostic.
func Match(sub Submission, rules []models.AutomationRule) []models.AutomationRule {
	var matched []models.AutomationRule
	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		if rule.TriggerType != models.TriggerFormSubmission {
			continue
		}
		if rule.FormType != sub.CanonicalType {
			continue
		}
		if rule.FormProduct != "" && rule.FormProduct != sub.ProductKey {
			continue
		}
		matched = append(matched, rule)
	}
	return matched
}
