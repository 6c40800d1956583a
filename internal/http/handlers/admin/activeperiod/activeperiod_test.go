package activeperiod

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-accounts/internal/models"
	"github.com/magabrotheeeer/subscription-accounts/internal/services/account"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) SetActivePeriod(ctx context.Context, email, activeUntil string) error {
	args := m.Called(ctx, email, activeUntil)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func serve(h http.Handler, path, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Method(http.MethodPost, "/api/admin/users/{email}/set-active-period", h)

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestActivePeriodHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		body           string
		callService    bool
		mockErr        error
		wantStatusCode int
		wantMessage    string
	}{
		{
			name:           "success",
			path:           "/api/admin/users/ana@x.com/set-active-period",
			body:           `{"activeUntil":"2020-01-01"}`,
			callService:    true,
			wantStatusCode: http.StatusOK,
			wantMessage:    "Masa aktif berhasil diperbarui.",
		},
		{
			name:           "escaped email in path",
			path:           "/api/admin/users/ana%40x.com/set-active-period",
			body:           `{"activeUntil":"2020-01-01"}`,
			callService:    true,
			wantStatusCode: http.StatusOK,
			wantMessage:    "Masa aktif berhasil diperbarui.",
		},
		{
			name:           "missing activeUntil",
			path:           "/api/admin/users/ana@x.com/set-active-period",
			body:           `{}`,
			wantStatusCode: http.StatusBadRequest,
			wantMessage:    "Tanggal masa aktif harus diisi.",
		},
		{
			name:           "bad date format",
			path:           "/api/admin/users/ana@x.com/set-active-period",
			body:           `{"activeUntil":"2020-01-01"}`,
			callService:    true,
			mockErr:        fmt.Errorf("op: %w: %w", account.ErrValidation, models.ErrInvalidActiveUntil),
			wantStatusCode: http.StatusBadRequest,
			wantMessage:    "Format tanggal masa aktif tidak valid.",
		},
		{
			name:           "unknown user",
			path:           "/api/admin/users/ana@x.com/set-active-period",
			body:           `{"activeUntil":"2020-01-01"}`,
			callService:    true,
			mockErr:        fmt.Errorf("op: %w", account.ErrUserNotFound),
			wantStatusCode: http.StatusNotFound,
			wantMessage:    "Pengguna tidak ditemukan.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.callService {
				svc.On("SetActivePeriod", mock.Anything, "ana@x.com", "2020-01-01").Return(tt.mockErr).Once()
			}

			rec := serve(New(newNoopLogger(), svc), tt.path, tt.body)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			var got map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.wantStatusCode == http.StatusOK, got["success"])
			assert.Equal(t, tt.wantMessage, got["message"])

			svc.AssertExpectations(t)
		})
	}
}
