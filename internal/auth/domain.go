package auth

import (
	"net/mail"
	"net/url"
	"strings"
)

// EmailMatchesDomain reports whether email belongs to the domain of
// websiteURL. "www." is ignored, so jobs@stripe.com matches
// https://www.stripe.com/careers.
func EmailMatchesDomain(email, websiteURL string) bool {
	// "Stripe Recruiting <jobs@stripe.com>" -> "jobs@stripe.com"
	addr := strings.TrimSpace(email)
	if parsed, err := mail.ParseAddress(addr); err == nil {
		addr = parsed.Address
	}
	addr = strings.ToLower(addr)

	at := strings.LastIndex(addr, "@")
	if at <= 0 || at == len(addr)-1 {
		return false
	}
	emailDomain := addr[at+1:]

	siteDomain := WebsiteDomain(websiteURL)
	if siteDomain == "" {
		return false
	}
	return emailDomain == siteDomain
}

// WebsiteDomain returns the lower-cased host of rawURL without a leading
// "www.", or "" when it cannot be parsed.
func WebsiteDomain(rawURL string) string {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
