package utils

import (
	"fmt"
	"net"
	"strings"

	"github.com/likexian/whois"
)

// DomainCheck is the result of a sending-domain health lookup performed by
// the admin sender-verification endpoint. Provider-side verification is a
// separate call; this covers the DNS/registration half.
type DomainCheck struct {
	Domain     string `json:"domain"`
	Registered bool   `json:"registered"`
	HasMX      bool   `json:"has_mx"`
	Registrar  string `json:"registrar,omitempty"`
}

// CheckSenderDomain looks the domain up in whois and DNS. A missing MX
// record does not block sending but is surfaced to the operator.
func CheckSenderDomain(domain string) (*DomainCheck, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return nil, fmt.Errorf("empty domain")
	}

	check := &DomainCheck{Domain: domain}

	if raw, err := whois.Whois(domain); err == nil {
		lower := strings.ToLower(raw)
		check.Registered = !strings.Contains(lower, "no match") &&
			!strings.Contains(lower, "not found")
		check.Registrar = whoisField(raw, "Registrar:")
	}

	if records, err := net.LookupMX(domain); err == nil && len(records) > 0 {
		check.HasMX = true
	}

	return check, nil
}

func whoisField(raw, prefix string) string {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
	}
	return ""
}
