package auth

import (
	"errors"
	"fmt"
	"net/http"

	svix "github.com/svix/svix-webhooks/go"
)

var ErrWebhookSignature = errors.New("webhook signature verification failed")

// WebhookVerifier checks a signed webhook delivery.
type WebhookVerifier interface {
	Verify(payload []byte, headers http.Header) error
}

type svixVerifier struct {
	wh *svix.Webhook
}

// NewWebhookVerifier builds a verifier for Svix-signed deliveries using the
// endpoint signing secret ("whsec_...").
func NewWebhookVerifier(secret string) (WebhookVerifier, error) {
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("creating webhook verifier: %w", err)
	}
	return &svixVerifier{wh: wh}, nil
}

func (v *svixVerifier) Verify(payload []byte, headers http.Header) error {
	if err := v.wh.Verify(payload, headers); err != nil {
		return fmt.Errorf("%w: %v", ErrWebhookSignature, err)
	}
	return nil
}

// Svix delivery headers.
const (
	HeaderSvixID        = "svix-id"
	HeaderSvixTimestamp = "svix-timestamp"
	HeaderSvixSignature = "svix-signature"
)

// HasWebhookHeaders reports whether all Svix headers are present.
func HasWebhookHeaders(h http.Header) bool {
	return h.Get(HeaderSvixID) != "" && h.Get(HeaderSvixTimestamp) != "" && h.Get(HeaderSvixSignature) != ""
}
