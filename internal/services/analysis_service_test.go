package services

import (
	"context"
	"testing"
	"time"

	"github.com/justsurfingit/job-board/internal/analytics"
	"github.com/justsurfingit/job-board/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyAnalysis(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := newFixture(db)
	ctx := context.Background()
	acme := testutil.CreateCompany(t, db, "org_1", "Acme")
	testutil.CreateCompany(t, db, "org_2", "Globex")
	testutil.CreateJob(t, db, acme.ID, "Backend Engineer", true)
	testutil.CreateJob(t, db, acme.ID, "Draft Role", false)

	companies, err := f.analysis.CompanyAnalysis(ctx)
	require.NoError(t, err)
	require.Len(t, companies, 2)
	assert.Equal(t, "Acme", companies[0].CompanyName)
	assert.Len(t, companies[0].Jobs, 2)
	assert.NotNil(t, companies[1].Jobs)
	assert.Empty(t, companies[1].Jobs)
}

func TestAnalysisCacheInvalidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := newFixture(db)
	ctx := context.Background()
	acme := testutil.CreateCompany(t, db, "org_1", "Acme")

	before, err := f.analysis.CompanyAnalysis(ctx)
	require.NoError(t, err)
	require.Empty(t, before[0].Jobs)

	testutil.CreateJob(t, db, acme.ID, "Backend Engineer", true)
	cached, err := f.analysis.CompanyAnalysis(ctx)
	require.NoError(t, err)
	assert.Empty(t, cached[0].Jobs)

	f.analysis.Invalidate()
	fresh, err := f.analysis.CompanyAnalysis(ctx)
	require.NoError(t, err)
	assert.Len(t, fresh[0].Jobs, 1)

	testutil.CreateCompany(t, db, "org_2", "Globex")
	require.NoError(t, f.analysis.Refresh(ctx))
	refreshed, err := f.analysis.CompanyAnalysis(ctx)
	require.NoError(t, err)
	assert.Len(t, refreshed, 2)

	var nilService *AnalysisService
	assert.NotPanics(t, nilService.Invalidate)
}

func TestInvalidateDuringLoadIsNotLost(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := newFixture(db)
	ctx := context.Background()
	acme := testutil.CreateCompany(t, db, "org_1", "Acme")

	afterFirstQuery(t, db, "jobs", func() {
		testutil.CreateJob(t, db, acme.ID, "Backend Engineer", true)
		f.analysis.Invalidate()
	})

	stale, err := f.analysis.CompanyAnalysis(ctx)
	require.NoError(t, err)
	assert.Empty(t, stale[0].Jobs)

	fresh, err := f.analysis.CompanyAnalysis(ctx)
	require.NoError(t, err)
	assert.Len(t, fresh[0].Jobs, 1)
}

func TestRefreshSkipsInvalidatedSnapshot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := newFixture(db)
	ctx := context.Background()
	acme := testutil.CreateCompany(t, db, "org_1", "Acme")

	afterFirstQuery(t, db, "jobs", func() {
		testutil.CreateJob(t, db, acme.ID, "Backend Engineer", true)
		f.analysis.Invalidate()
	})
	require.NoError(t, f.analysis.Refresh(ctx))

	companies, err := f.analysis.CompanyAnalysis(ctx)
	require.NoError(t, err)
	assert.Len(t, companies[0].Jobs, 1)
}

func TestWritesInvalidateAnalysis(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := newFixture(db)
	ctx := context.Background()
	me := testutil.CreateCandidate(t, db, "user_1", "Ada Lovelace")

	resumes, err := f.analysis.CandidateAnalysis(ctx)
	require.NoError(t, err)
	require.Empty(t, resumes)

	_, err = f.resumes.Save(ctx, me, nil, resumeRequest("Main"))
	require.NoError(t, err)

	resumes, err = f.analysis.CandidateAnalysis(ctx)
	require.NoError(t, err)
	assert.Len(t, resumes, 1)
}

func TestDashboards(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := newFixture(db)
	ctx := context.Background()
	acme := testutil.CreateCompany(t, db, "org_1", "Acme")
	globex := testutil.CreateCompany(t, db, "org_2", "Globex")
	testutil.CreateJob(t, db, acme.ID, "Backend Engineer", true)
	testutil.CreateJob(t, db, acme.ID, "Frontend Engineer", true)
	testutil.CreateJob(t, db, globex.ID, "Designer", true)
	initech := testutil.CreateCompany(t, db, "org_3", "Initech")

	all, err := f.analysis.JobDashboard(ctx, analytics.JobFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.TotalJobs)
	assert.Equal(t, 3, all.MatchingJobs)
	assert.Equal(t, []analytics.CompanyOption{
		{ID: acme.ID.String(), Name: "Acme", JobCount: 2},
		{ID: globex.ID.String(), Name: "Globex", JobCount: 1},
		{ID: initech.ID.String(), Name: "Initech", JobCount: 0},
	}, all.Companies)

	onlyAcme, err := f.analysis.JobDashboard(ctx, analytics.JobFilter{CompanyID: acme.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, 3, onlyAcme.TotalJobs)
	assert.Equal(t, 2, onlyAcme.MatchingJobs)
	assert.Len(t, onlyAcme.Companies, 3)

	rows, err := f.analysis.FilteredJobs(ctx, analytics.JobFilter{Query: "designer"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Globex", rows[0].CompanyName)

	ada := testutil.CreateCandidate(t, db, "user_1", "Ada Lovelace")
	testutil.CreateResume(t, db, ada, "Main")
	f.analysis.Invalidate()

	cd, err := f.analysis.CandidateDashboard(ctx, analytics.ResumeFilter{Skill: "Go"})
	require.NoError(t, err)
	assert.Equal(t, 1, cd.TotalResumes)
	require.NotEmpty(t, cd.HardSkills)
}

func TestAnalysisTTL(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewAnalysisService(db, 10*time.Millisecond, testutil.Logger())
	ctx := context.Background()

	_, err := svc.CompanyAnalysis(ctx)
	require.NoError(t, err)
	testutil.CreateCompany(t, db, "org_1", "Acme")

	assert.Eventually(t, func() bool {
		companies, err := svc.CompanyAnalysis(ctx)
		return err == nil && len(companies) == 1
	}, time.Second, 20*time.Millisecond)
}
