package services

import (
	"context"
	"testing"

	"github.com/justsurfingit/job-board/internal/auth"
	"github.com/justsurfingit/job-board/internal/models"
	"github.com/justsurfingit/job-board/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnboardingCandidate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	identity := newFakeIdentity()
	svc := NewOnboardingService(db, identity, testutil.Logger())
	ctx := context.Background()
	me := testutil.CreateCandidate(t, db, "user_1", "Ada Lovelace")
	sess := &auth.Session{UserID: "user_1", Role: models.RoleCandidate}

	status, err := svc.Status(ctx, sess)
	require.NoError(t, err)
	assert.False(t, status.Complete)
	assert.Equal(t, []string{RequirementDefaultResume}, status.Missing)

	_, err = svc.Complete(ctx, sess)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, identity.metadata)

	testutil.CreateResume(t, db, me, "Main")
	status, err = svc.Complete(ctx, sess)
	require.NoError(t, err)
	assert.True(t, status.Complete)
	assert.Empty(t, status.Missing)
	assert.Equal(t, auth.PublicMetadata{Role: models.RoleCandidate, OnboardingComplete: true}, identity.metadata["user_1"])
}

func TestOnboardingCompany(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewOnboardingService(db, newFakeIdentity(), testutil.Logger())
	ctx := context.Background()
	acme := testutil.CreateCompany(t, db, "org_1", "Acme")
	require.NoError(t, db.Model(acme).Update("website_url", "").Error)

	done := true
	status, err := svc.Status(ctx, &auth.Session{UserID: "org_1", Role: models.RoleCompany, OnboardingComplete: &done})
	require.NoError(t, err)
	assert.True(t, status.Complete)
	assert.Equal(t, []string{RequirementWebsiteURL}, status.Missing)
}

func TestOnboardingErrors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewOnboardingService(db, newFakeIdentity(), testutil.Logger())
	ctx := context.Background()

	_, err := svc.Status(ctx, &auth.Session{UserID: "user_1"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Status(ctx, &auth.Session{UserID: "user_1", Role: models.RoleCandidate})
	assert.ErrorIs(t, err, ErrNotFound)
}
