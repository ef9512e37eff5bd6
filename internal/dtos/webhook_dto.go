package dtos

// Identity provider webhook event types.
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// WebhookEvent is the envelope of a Clerk webhook delivery.
type WebhookEvent struct {
	Type string          `json:"type"`
	Data WebhookUserData `json:"data"`
}

type WebhookUserData struct {
	ID             string                `json:"id"`
	FirstName      string                `json:"first_name"`
	LastName       string                `json:"last_name"`
	ImageURL       string                `json:"image_url"`
	EmailAddresses []WebhookEmailAddress `json:"email_addresses"`
	UnsafeMetadata WebhookUnsafeMetadata `json:"unsafe_metadata"`
	Deleted        bool                  `json:"deleted"`
}

type WebhookEmailAddress struct {
	EmailAddress string `json:"email_address"`
	Verification *struct {
		Status string `json:"status"`
	} `json:"verification"`
}

// WebhookUnsafeMetadata is what the sign-up form attached to the user.
type WebhookUnsafeMetadata struct {
	Role        string `json:"role"`
	FullName    string `json:"fullName"`
	CompanyName string `json:"companyName"`
	WebsiteURL  string `json:"websiteUrl"`
}

// PrimaryEmail returns the first email address, or "".
func (d WebhookUserData) PrimaryEmail() string {
	if len(d.EmailAddresses) == 0 {
		return ""
	}
	return d.EmailAddresses[0].EmailAddress
}

// EmailVerified reports whether the first email address is verified.
func (d WebhookUserData) EmailVerified() bool {
	if len(d.EmailAddresses) == 0 || d.EmailAddresses[0].Verification == nil {
		return false
	}
	return d.EmailAddresses[0].Verification.Status == "verified"
}

// DisplayName is "first last" when both are set, otherwise the primary email.
func (d WebhookUserData) DisplayName() string {
	if d.FirstName != "" && d.LastName != "" {
		return d.FirstName + " " + d.LastName
	}
	return d.PrimaryEmail()
}
