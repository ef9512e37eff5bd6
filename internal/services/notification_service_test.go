package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/justsurfingit/job-board/internal/models"
	"github.com/justsurfingit/job-board/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotifier(t *testing.T, status int) (*NotificationService, *[]string, *atomic.Int32) {
	t.Helper()
	var bodies []string
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer SG.test", r.Header.Get("Authorization"))
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)

	svc := NewNotificationService("SG.test", "noreply@jobboard.dev", testutil.Logger())
	svc.Host = srv.URL
	svc.async = false
	return svc, &bodies, &calls
}

func TestApplicationReceivedEmail(t *testing.T) {
	svc, bodies, _ := newTestNotifier(t, http.StatusAccepted)
	job := &models.Job{Title: "Backend Engineer", Company: &models.Company{CompanyName: "Acme", Email: "hr@acme.com"}}

	svc.ApplicationReceived(context.Background(), job, &models.Candidate{Name: "Ada Lovelace"})

	require.Len(t, *bodies, 1)
	body := (*bodies)[0]
	assert.Contains(t, body, "hr@acme.com")
	assert.Contains(t, body, "New applicant for Backend Engineer")
	assert.Contains(t, body, "Ada Lovelace")
}

func TestApplicationStatusEmail(t *testing.T) {
	svc, bodies, _ := newTestNotifier(t, http.StatusAccepted)
	job := &models.Job{Title: "Backend Engineer", Company: &models.Company{CompanyName: "Acme"}}

	svc.ApplicationStatusChanged(context.Background(), job, &models.Candidate{Name: "Ada", Email: "ada@example.com"}, models.StatusOffer)
	svc.ApplicationStatusChanged(context.Background(), job, &models.Candidate{Name: "No Email"}, models.StatusOffer)

	require.Len(t, *bodies, 1)
	assert.Contains(t, (*bodies)[0], "ada@example.com")
	assert.Contains(t, (*bodies)[0], models.StatusOffer)
}

func TestSendClientErrorIsNotRetried(t *testing.T) {
	svc, _, calls := newTestNotifier(t, http.StatusBadRequest)

	err := svc.Send(context.Background(), "ada@example.com", "Hi", applicationStatusTemplate, applicationStatusBody{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.EqualValues(t, 1, calls.Load())
}

func TestDisabledNotifierSkips(t *testing.T) {
	svc, bodies, _ := newTestNotifier(t, http.StatusAccepted)
	svc.APIKey = ""
	assert.False(t, svc.Enabled())

	svc.ApplicationReceived(context.Background(), &models.Job{Company: &models.Company{Email: "hr@acme.com"}}, &models.Candidate{})
	assert.Empty(t, *bodies)
}

func TestRetry(t *testing.T) {
	ctx := context.Background()
	logger := testutil.Logger()

	n := 0
	err := retry(ctx, logger, 3, time.Millisecond, func() error {
		n++
		if n < 3 {
			return errors.New("temporary")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n = 0
	err = retry(ctx, logger, 3, time.Millisecond, func() error {
		n++
		return errors.New("still down")
	})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "failed after 3 attempts"))
	assert.Equal(t, 3, n)

	n = 0
	err = retry(ctx, logger, 3, time.Millisecond, func() error {
		n++
		return permanent{errors.New("bad request")}
	})
	assert.EqualError(t, err, "bad request")
	assert.Equal(t, 1, n)
}
