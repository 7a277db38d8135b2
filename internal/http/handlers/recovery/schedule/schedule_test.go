package schedule

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/gym-scheduler/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gym-scheduler/internal/models"
)

// MockService реализует интерфейс schedule.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ScheduleRecovery(ctx context.Context, memberUID, originalSessionID, recoverySessionID string) (*models.Recovery, error) {
	args := m.Called(ctx, memberUID, originalSessionID, recoverySessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recovery), args.Error(1)
}

func TestScheduleHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	originalSessionID := "33333333-3333-3333-3333-333333333333"
	recoverySessionID := "44444444-4444-4444-4444-444444444444"
	validReq := models.DummyScheduleRecovery{
		OriginalSessionID: originalSessionID,
		RecoverySessionID: recoverySessionID,
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		memberUID      string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "успешная запись на отработку",
			requestBody: validReq,
			memberUID:   "member-1",
			setupMock: func(m *MockService) {
				m.On("ScheduleRecovery", mock.Anything, "member-1", originalSessionID, recoverySessionID).
					Return(&models.Recovery{
						ID:                "rec-1",
						MemberUID:         "member-1",
						RecoverySessionID: recoverySessionID,
						Status:            models.RecoveryScheduled,
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"recovery_id":"rec-1"`,
		},
		{
			name:           "некорректный JSON",
			requestBody:    "not a json",
			memberUID:      "member-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name:           "ошибка валидации",
			requestBody:    models.DummyScheduleRecovery{},
			memberUID:      "member-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field OriginalSessionID is a required field`,
		},
		{
			name:           "отсутствует авторизация",
			requestBody:    validReq,
			memberUID:      "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name:        "исчерпана месячная квота",
			requestBody: validReq,
			memberUID:   "member-1",
			setupMock: func(m *MockService) {
				m.On("ScheduleRecovery", mock.Anything, "member-1", originalSessionID, recoverySessionID).
					Return(nil, models.ErrQuotaExceeded)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `monthly recovery quota exceeded`,
		},
		{
			name:        "целевая тренировка заполнена",
			requestBody: validReq,
			memberUID:   "member-1",
			setupMock: func(m *MockService) {
				m.On("ScheduleRecovery", mock.Anything, "member-1", originalSessionID, recoverySessionID).
					Return(nil, models.ErrSessionFull)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `session has no remaining capacity`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			var body []byte
			var err error
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				assert.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/recoveries", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			ctx := context.WithValue(req.Context(), middlewarectx.User, tt.memberUID)
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-id")
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockService.AssertExpectations(t)
		})
	}
}
