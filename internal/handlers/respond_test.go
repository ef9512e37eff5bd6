package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/justsurfingit/job-board/internal/auth"
	"github.com/justsurfingit/job-board/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("loading job: %w", services.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("job owned by another company: %w", services.ErrForbidden), http.StatusForbidden},
		{services.ErrConflict, http.StatusConflict},
		{fmt.Errorf("%w: bad date", services.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("%w: bad signature", auth.ErrWebhookSignature), http.StatusBadRequest},
		{services.ErrUnavailable, http.StatusServiceUnavailable},
		{auth.ErrUnauthenticated, http.StatusUnauthorized},
		{auth.ErrInvalidToken, http.StatusUnauthorized},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
