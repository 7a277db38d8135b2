package update

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/gym-scheduler/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gym-scheduler/internal/models"
)

// MockService реализует интерфейс update.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) UpdateSubscription(ctx context.Context, memberUID, adminUID string, req models.DummyUpdateSubscription) (*models.SubscriptionInfo, error) {
	args := m.Called(ctx, memberUID, adminUID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionInfo), args.Error(1)
}

func TestUpdateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	validReq := models.DummyUpdateSubscription{
		Type:      models.SubscriptionComplete,
		StartDate: "01-10-2026",
		EndDate:   "01-11-2026",
		Price:     400,
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		adminUID       string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "успешное оформление абонемента",
			requestBody: validReq,
			adminUID:    "admin-1",
			setupMock: func(m *MockService) {
				m.On("UpdateSubscription", mock.Anything, "member-1", "admin-1",
					mock.AnythingOfType("models.DummyUpdateSubscription")).
					Return(&models.SubscriptionInfo{
						Subscription: models.Subscription{
							MemberUID: "member-1",
							Type:      models.SubscriptionComplete,
							Status:    models.SubscriptionStatusActive,
						},
						Permissions: models.PermissionsFor(models.SubscriptionComplete),
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"can_schedule_recoveries":true`,
		},
		{
			name:           "некорректный JSON",
			requestBody:    "not a json",
			adminUID:       "admin-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name:           "ошибка валидации",
			requestBody:    models.DummyUpdateSubscription{},
			adminUID:       "admin-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Type is a required field`,
		},
		{
			name:        "участник не найден",
			requestBody: validReq,
			adminUID:    "admin-1",
			setupMock: func(m *MockService) {
				m.On("UpdateSubscription", mock.Anything, "member-1", "admin-1",
					mock.AnythingOfType("models.DummyUpdateSubscription")).
					Return(nil, models.ErrMemberNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `member not found`,
		},
		{
			name:        "неизвестный тип абонемента",
			requestBody: validReq,
			adminUID:    "admin-1",
			setupMock: func(m *MockService) {
				m.On("UpdateSubscription", mock.Anything, "member-1", "admin-1",
					mock.AnythingOfType("models.DummyUpdateSubscription")).
					Return(nil, models.ErrInvalidSubscriptionType)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `invalid subscription type`,
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

			req := httptest.NewRequest(http.MethodPut, "/members/member-1/subscription", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			ctx := context.WithValue(req.Context(), middlewarectx.User, tt.adminUID)
			ctx = context.WithValue(ctx, middlewarectx.Role, middlewarectx.RoleAdmin)
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-id")
			req = req.WithContext(ctx)

			// Устанавливаем URL параметр memberID для chi
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("memberID", "member-1")
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockService.AssertExpectations(t)
		})
	}
}
