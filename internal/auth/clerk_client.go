package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/justsurfingit/job-board/internal/models"
	"github.com/sendgrid/rest"
)

// PublicMetadata is the server-writable metadata stored on an identity
// provider user. It is copied into session tokens as the "metadata" claim.
type PublicMetadata struct {
	Role               models.Role `json:"role"`
	OnboardingComplete bool        `json:"onboardingComplete"`
}

// ClerkClient talks to the Clerk backend API.
type ClerkClient struct {
	BaseURL   string
	SecretKey string
	Client    *rest.Client
}

func NewClerkClient(baseURL, secretKey string) *ClerkClient {
	return &ClerkClient{
		BaseURL:   baseURL,
		SecretKey: secretKey,
		Client:    rest.DefaultClient,
	}
}

// UpdatePublicMetadata merges md into the user's public metadata.
func (c *ClerkClient) UpdatePublicMetadata(ctx context.Context, userID string, md PublicMetadata) error {
	body, err := json.Marshal(map[string]any{"public_metadata": md})
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	_, err = c.send(ctx, rest.Patch, "/users/"+url.PathEscape(userID)+"/metadata", body)
	return err
}

// DeleteUser removes the user from the identity provider.
func (c *ClerkClient) DeleteUser(ctx context.Context, userID string) error {
	_, err := c.send(ctx, rest.Delete, "/users/"+url.PathEscape(userID), nil)
	return err
}

func (c *ClerkClient) send(ctx context.Context, method rest.Method, path string, body []byte) (*rest.Response, error) {
	req := rest.Request{
		Method:  method,
		BaseURL: c.BaseURL + path,
		Headers: map[string]string{
			"Authorization": "Bearer " + c.SecretKey,
			"Content-Type":  "application/json",
		},
		Body: body,
	}

	resp, err := c.Client.SendWithContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("clerk %s %s: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, fmt.Errorf("clerk %s %s: unexpected status %d: %s", method, path, resp.StatusCode, resp.Body)
	}
	return resp, nil
}
