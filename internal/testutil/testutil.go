package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stayora/stayora-auth/internal/auth"
	"github.com/stayora/stayora-auth/internal/database"
	"github.com/stayora/stayora-auth/internal/database/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// Run migrations
	err = db.AutoMigrate(
		&models.User{},
		&models.Tenant{},
		&models.VerificationToken{},
		&models.ResetToken{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// CreateTestUser creates a verified EMAIL user with a known password
// ("testpassword123").
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("testpassword123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Base: models.Base{
			ID: uuid.New(),
		},
		Role:         models.RoleUser,
		Name:         "Test User",
		Email:        "test-" + uuid.New().String()[:8] + "@example.com",
		PasswordHash: hash,
		Provider:     models.ProviderEmail,
		IsVerified:   true,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateUnverifiedUser creates a freshly registered EMAIL user: no password,
// not verified.
func CreateUnverifiedUser(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		Base: models.Base{
			ID: uuid.New(),
		},
		Role:     role,
		Name:     "Pending User",
		Email:    "pending-" + uuid.New().String()[:8] + "@example.com",
		Provider: models.ProviderEmail,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create unverified user: %v", err)
	}

	return user
}

// CreateTestJWTService creates a JWT service for testing
func CreateTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-testing", 7*24*time.Hour)
}

// GenerateTestToken generates a valid JWT token for the given user
func GenerateTestToken(t *testing.T, jwtService *auth.JWTService, user *models.User) string {
	t.Helper()

	token, err := jwtService.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	return token
}

// SentEmail records one FakeMailer delivery.
type SentEmail struct {
	To       string
	Subject  string
	Template string
	Data     map[string]any
}

// FakeMailer captures outbound email instead of delivering it.
type FakeMailer struct {
	mu   sync.Mutex
	Sent []SentEmail
	Err  error
}

func (m *FakeMailer) Send(ctx context.Context, to, subject, template string, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentEmail{To: to, Subject: subject, Template: template, Data: data})
	return nil
}

// Last returns the most recent delivery, or nil.
func (m *FakeMailer) Last() *SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Sent) == 0 {
		return nil
	}
	return &m.Sent[len(m.Sent)-1]
}

// FakeVerifier substitutes the Google ID-token verifier.
type FakeVerifier struct {
	Claims       *auth.SocialClaims
	Err          error
	LastAudience string
}

func (v *FakeVerifier) Verify(ctx context.Context, assertion, audience string) (*auth.SocialClaims, error) {
	v.LastAudience = audience
	if v.Err != nil {
		return nil, v.Err
	}
	return v.Claims, nil
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}

// TestSetup holds all the common test dependencies
type TestSetup struct {
	DB          *gorm.DB
	JWTService  *auth.JWTService
	AuthService *auth.Service
	Mailer      *FakeMailer
	Verifier    *FakeVerifier
	User        *models.User
	Token       string
}

// NewTestContext creates a complete test setup with DB, stores, fakes, a
// verified user and a bearer token for that user.
func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	db := SetupTestDB(t)
	jwtService := CreateTestJWTService()
	mailer := &FakeMailer{}
	verifier := &FakeVerifier{}

	authService := auth.NewService(auth.Deps{
		Users:              database.NewUserStore(db),
		Tenants:            database.NewTenantStore(db),
		VerificationTokens: database.NewVerificationTokenStore(db),
		ResetTokens:        database.NewResetTokenStore(db),
		JWT:                jwtService,
		Mailer:             mailer,
		Verifier:           verifier,
		BaseURL:            "http://localhost:3000",
		GoogleClientID:     "test-client-id",
	})

	user := CreateTestUser(t, db)
	token := GenerateTestToken(t, jwtService, user)

	return &TestSetup{
		DB:          db,
		JWTService:  jwtService,
		AuthService: authService,
		Mailer:      mailer,
		Verifier:    verifier,
		User:        user,
		Token:       token,
	}
}

// Cleanup closes the test database
func (ts *TestSetup) Cleanup() {
	if ts.DB != nil {
		sqlDB, err := ts.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}
