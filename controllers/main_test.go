package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"salonhub-backend/config"
	"salonhub-backend/controllers"
	"salonhub-backend/models"
	"salonhub-backend/routes"
)

type testEnv struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
}

type testAccount struct {
	Token   string
	UserID  uuid.UUID
	SalonID uuid.UUID
}

// setupTest boots the full router against a fresh in-memory database.
// JWT and service clients pick their config up from the test env, so any
// OPENAI_BASE_URL / webhook secret overrides must be set before calling.
func setupTest(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)
	config.InitLogger()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Salon{},
		&models.Service{},
		&models.Booking{},
		&models.Payment{},
		&models.StripeAccount{},
		&models.Review{},
		&models.ReviewReport{},
		&models.WebhookEvent{},
	))
	config.DB = db

	controllers.Setup()

	return &testEnv{t: t, db: db, router: routes.SetupRouter()}
}

func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func (e *testEnv) registerCustomer(email, phone string) testAccount {
	e.t.Helper()
	w := e.do("POST", "/auth/register", "", gin.H{
		"email":    email,
		"phone":    phone,
		"name":     "Test Customer",
		"password": "password123",
		"role":     "customer",
	})
	require.Equal(e.t, 201, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID uuid.UUID `json:"id"`
		} `json:"user"`
	}
	decodeBody(e.t, w, &resp)
	return testAccount{Token: resp.Token, UserID: resp.User.ID}
}

func (e *testEnv) registerOwner(email, phone, salonName string) testAccount {
	e.t.Helper()
	w := e.do("POST", "/auth/register", "", gin.H{
		"email":     email,
		"phone":     phone,
		"name":      "Test Owner",
		"password":  "password123",
		"role":      "owner",
		"salonName": salonName,
	})
	require.Equal(e.t, 201, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID uuid.UUID `json:"id"`
		} `json:"user"`
	}
	decodeBody(e.t, w, &resp)

	var salon models.Salon
	require.NoError(e.t, e.db.First(&salon, "owner_id = ?", resp.User.ID).Error)
	return testAccount{Token: resp.Token, UserID: resp.User.ID, SalonID: salon.ID}
}

// seedService inserts a bookable service for a salon.
func (e *testEnv) seedService(salonID uuid.UUID, name string, price float64) *models.Service {
	e.t.Helper()
	service := &models.Service{
		SalonID:  salonID,
		Name:     name,
		Price:    price,
		Duration: 45,
		IsActive: true,
	}
	require.NoError(e.t, e.db.Create(service).Error)
	return service
}
