package create

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/rephome/repair-booking/internal/http/middlewarectx"
	"github.com/rephome/repair-booking/internal/models"
	"github.com/rephome/repair-booking/internal/services/booking"
)

// MockService реализует интерфейс create.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, userUID string, req models.DummyBooking) (*models.Booking, bool, error) {
	args := m.Called(ctx, userUID, req)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Booking), args.Bool(1), args.Error(2)
}

func validRequest() models.DummyBooking {
	return models.DummyBooking{
		Name:          "Ravi Sharma",
		Phone:         "+91 9876543210",
		Email:         "ravi@example.com",
		Address:       "12 Krishna Nagar, Mathura",
		BrandName:     "Apple",
		DeviceModel:   "iPhone 14",
		Issue:         "screen-crack",
		PreferredDate: "2025-06-20",
		PreferredTime: "10:00-12:00",
	}
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	created := &models.Booking{
		BookingNumber: "RPHAB12CD34",
		Status:        models.StatusPending,
		EmailVerified: false,
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "успешное создание заявки",
			requestBody: validRequest(),
			userUID:     "uid-1",
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, "uid-1", mock.AnythingOfType("models.DummyBooking")).
					Return(created, true, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"email_sent":true`,
		},
		{
			name:        "письмо не ушло, заявка создана",
			requestBody: validRequest(),
			userUID:     "uid-1",
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, "uid-1", mock.AnythingOfType("models.DummyBooking")).
					Return(created, false, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"email_sent":false`,
		},
		{
			name:           "некорректный JSON",
			requestBody:    "not a json",
			userUID:        "uid-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name:           "ошибка валидации",
			requestBody:    models.DummyBooking{},
			userUID:        "uid-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Name is a required field`,
		},
		{
			name:           "отсутствует авторизация",
			requestBody:    validRequest(),
			userUID:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
		{
			name:        "некорректная дата",
			requestBody: validRequest(),
			userUID:     "uid-1",
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, "uid-1", mock.AnythingOfType("models.DummyBooking")).
					Return(nil, false, booking.ErrInvalidDate)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `preferred_date must be in format 2006-01-02`,
		},
		{
			name:        "ошибка сервиса",
			requestBody: validRequest(),
			userUID:     "uid-1",
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, "uid-1", mock.AnythingOfType("models.DummyBooking")).
					Return(nil, false, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not create booking"`,
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

			req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			ctx := req.Context()
			if tt.userUID != "" {
				ctx = context.WithValue(ctx, middlewarectx.UserUID, tt.userUID)
			}
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

// Секретный код не должен попадать в ответ даже при заполненном поле.
func TestCreateHandler_OTPNeverInResponse(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	code := "042137"
	withOTP := &models.Booking{
		BookingNumber: "RPHAB12CD34",
		Status:        models.StatusPending,
		OTPCode:       &code,
	}

	mockService := new(MockService)
	mockService.On("Create", mock.Anything, "uid-1", mock.AnythingOfType("models.DummyBooking")).
		Return(withOTP, true, nil)

	body, err := json.Marshal(validRequest())
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewReader(body))
	ctx := context.WithValue(req.Context(), middlewarectx.UserUID, "uid-1")
	req = req.WithContext(ctx)

	w := httptest.NewRecorder()
	New(logger, mockService).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), code)
}
