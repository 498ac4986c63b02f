package automation

import "strings"

// Canonical form types used for rule matching. Every raw form type maps to
// exactly one of these.
const (
	FormTypeContact = "contact"
	FormTypeCareer  = "career_application"
)

// Product keys recognized inside raw form types ("demo_zira_sms",
// "zira-homes-contact", ...).
var productKeys = []string{"zira_web", "zira_sms", "zira_homes", "zira_lock"}

// Normalize maps a raw free-text form type to a canonical type plus an
// optional product key. The mapping is total (any input yields a canonical
// type) and idempotent (normalizing a canonical value is a no-op).
func Normalize(rawType string) (canonical string, productKey string) {
	t := strings.ToLower(strings.TrimSpace(rawType))
	t = strings.NewReplacer("-", "_", " ", "_").Replace(t)

	for _, key := range productKeys {
		if strings.Contains(t, key) {
			productKey = key
			break
		}
	}

	switch {
	case strings.Contains(t, "career"), strings.Contains(t, "job"),
		strings.Contains(t, "position"), strings.Contains(t, "recruit"):
		canonical = FormTypeCareer
	default:
		canonical = FormTypeContact
	}
	return canonical, productKey
}
