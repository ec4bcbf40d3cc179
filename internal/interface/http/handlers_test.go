package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/obakengshepherd/InsureClaim/internal/application"
	"github.com/obakengshepherd/InsureClaim/internal/domain/entity"
	"github.com/obakengshepherd/InsureClaim/internal/domain/identifier"
	"github.com/obakengshepherd/InsureClaim/internal/domain/premium"
	"github.com/obakengshepherd/InsureClaim/internal/interface/middleware"
	"github.com/obakengshepherd/InsureClaim/pkg/helpers"
	"github.com/obakengshepherd/InsureClaim/pkg/validation"
)

const (
	customerID = "6f1c2a4e-0b7d-4c1e-9f3a-1d2e3f4a5b6c"
	adminID    = "0a9b8c7d-6e5f-4a3b-8c2d-1e0f9a8b7c6d"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
	helpers.BcryptCost = bcrypt.MinCost
}

type usersStub struct {
	mu   sync.Mutex
	byID map[string]entity.User
}

func (s *usersStub) Create(_ context.Context, u *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.byID {
		if e.Email == u.Email {
			return fmt.Errorf("create user: %w", entity.ErrConflict)
		}
	}
	s.byID[u.ID] = *u
	return nil
}

func (s *usersStub) Upsert(_ context.Context, u *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[u.ID] = *u
	return nil
}

func (s *usersStub) GetByID(_ context.Context, id string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &u, nil
}

func (s *usersStub) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, entity.ErrNotFound
}

type policiesStub struct {
	mu   sync.Mutex
	byID map[string]entity.Policy
}

func (s *policiesStub) Create(_ context.Context, p *entity.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[p.ID] = *p
	return nil
}

func (s *policiesStub) GetByID(_ context.Context, id string) (*entity.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &p, nil
}

func (s *policiesStub) List(_ context.Context, ownerID string) ([]entity.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Policy
	for _, p := range s.byID {
		if ownerID == "" || p.UserID == ownerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PolicyNumber > out[j].PolicyNumber })
	return out, nil
}

func (s *policiesStub) Update(ctx context.Context, p *entity.Policy) error {
	if _, err := s.GetByID(ctx, p.ID); err != nil {
		return err
	}
	return s.Create(ctx, p)
}

type directTx struct{}

func (directTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type revokedSet struct {
	mu  sync.Mutex
	ids map[string]time.Time
}

func (r *revokedSet) Revoke(_ context.Context, jti string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids[jti] = until
	return nil
}

func (r *revokedSet) IsRevoked(_ context.Context, jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.ids[jti]
	return ok, nil
}

type testServer struct {
	engine   *gin.Engine
	auth     *application.AuthService
	policies *policiesStub
	revoked  *revokedSet
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := helpers.NopLogger()
	users := &usersStub{byID: map[string]entity.User{
		customerID: {ID: customerID, FullName: "Lerato Nkosi", Email: "lerato@example.com", Role: entity.RoleCustomer, IsActive: true},
		adminID:    {ID: adminID, FullName: "Sam Admin", Email: "admin@example.com", Role: entity.RoleAdmin, IsActive: true},
	}}
	pols := &policiesStub{byID: map[string]entity.Policy{}}
	revoked := &revokedSet{ids: map[string]time.Time{}}

	jwt := helpers.NewJWTManager("handler-test-secret-with-length", "insureclaim", "insureclaim-api", time.Hour)
	authSvc := application.NewAuthService(users, jwt, revoked, logger)

	ids := identifier.NewGenerator(identifier.NewMemorySequence())
	ids.Clock = func() time.Time { return testNow }
	policySvc := application.NewPolicyService(pols, users, directTx{}, ids, premium.Calculator{}, nil, logger)
	policySvc.Now = func() time.Time { return testNow }

	ah := NewAuthHandler(authSvc, logger)
	ph := NewPolicyHandler(policySvc, logger)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/register", ah.Register)
	api.POST("/auth/login", ah.Login)
	api.GET("/auth/health", ah.Health)
	protected := api.Group("/", middleware.Auth(jwt, revoked, logger))
	protected.GET("/auth/me", ah.Me)
	protected.POST("/auth/logout", ah.Logout)
	protected.POST("/policy", ph.Create)
	protected.GET("/policy", ph.List)
	protected.GET("/policy/:id", ph.Get)
	protected.DELETE("/policy/:id", ph.Cancel)

	return &testServer{engine: r, auth: authSvc, policies: pols, revoked: revoked}
}

func (s *testServer) tokenFor(t *testing.T, userID string) string {
	t.Helper()
	u, err := s.auth.Users.GetByID(context.Background(), userID)
	require.NoError(t, err)
	tok, _, err := s.auth.JWT.GenerateAccessToken(helpers.TokenSubject{UserID: u.ID, Email: u.Email, Name: u.FullName, Role: u.Role.String()})
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: policy", entity.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: owner", entity.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("%w: cancelled", entity.ErrInvalidState), http.StatusBadRequest},
		{fmt.Errorf("%w: amount", entity.ErrOutOfRange), http.StatusBadRequest},
		{fmt.Errorf("%w: role", entity.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: email", entity.ErrConflict), http.StatusConflict},
		{application.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("%w: search", application.ErrFeatureDisabled), http.StatusServiceUnavailable},
		{fmt.Errorf("query: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestWriteError_HidesInternalDetail(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	writeError(c, helpers.NopLogger(), fmt.Errorf("dial tcp 10.0.0.5:5432: refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestMoney_MarshalsTwoDecimals(t *testing.T) {
	b, err := json.Marshal(struct {
		A Money  `json:"a"`
		B *Money `json:"b"`
	}{A: money(decimal.NewFromInt(3800)), B: nil})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":3800.00,"b":null}`, string(b))
	assert.Contains(t, string(b), "3800.00")
}

func TestDate_Unmarshal(t *testing.T) {
	var v struct {
		D Date `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2025-03-01"}`), &v))
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), v.D.Time)

	require.NoError(t, json.Unmarshal([]byte(`{"d":"2025-03-01T12:30:00+02:00"}`), &v))
	assert.Equal(t, time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC), v.D.Time)

	assert.Error(t, json.Unmarshal([]byte(`{"d":"01/03/2025"}`), &v))
}

func TestLowerFirst(t *testing.T) {
	assert.Equal(t, "underReview", lowerFirst("UnderReview"))
	assert.Equal(t, "creditCard", lowerFirst("CreditCard"))
	assert.Equal(t, "", lowerFirst(""))
}

func TestAuthHandler_RegisterLoginMeLogout(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/auth/register", "", `{
		"fullName":"Thabo Mokoena","email":"Thabo@Example.com","password":"S3cure!pass",
		"phoneNumber":"+27820000000","role":1}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var reg authResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &reg))
	assert.Equal(t, "thabo@example.com", reg.Email)
	assert.Equal(t, entity.RoleCustomer, reg.Role)
	assert.NotEmpty(t, reg.Token)

	w = s.do(http.MethodPost, "/api/auth/login", "", `{"email":"thabo@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/auth/login", "", `{"email":"thabo@example.com","password":"S3cure!pass"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"tokenExpiration"`)

	w = s.do(http.MethodGet, "/api/auth/me", reg.Token, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"fullName":"Thabo Mokoena"`)
	assert.NotContains(t, w.Body.String(), "passwordHash")

	w = s.do(http.MethodPost, "/api/auth/logout", reg.Token, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Len(t, s.revoked.ids, 1)

	w = s.do(http.MethodGet, "/api/auth/me", reg.Token, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/auth/register", "", `{"fullName":"T","email":"nope","password":"weak","phoneNumber":""}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	var details map[string]string
	require.NoError(t, json.Unmarshal(env.Error, &details))
	assert.Contains(t, details, "fullName")
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
	assert.Contains(t, details, "phoneNumber")

	w = s.do(http.MethodPost, "/api/auth/register", "", `{
		"fullName":"Lerato Again","email":"lerato@example.com","password":"S3cure!pass","phoneNumber":"+27820000001"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/auth/register", "", `{
		"fullName":"Self Promoted","email":"boss@example.com","password":"S3cure!pass","phoneNumber":"+27820000002","role":3}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPolicyHandler_CreateComputesPremium(t *testing.T) {
	s := newTestServer(t)
	tok := s.tokenFor(t, customerID)

	w := s.do(http.MethodPost, "/api/policy", tok, `{"type":2,"coverageAmount":500000,"startDate":"2025-07-01","durationMonths":12}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := w.Body.String()
	assert.Contains(t, body, `"premiumAmount":3800.00`)
	assert.Contains(t, body, `"coverageAmount":500000.00`)
	assert.Contains(t, body, `"policyNumber":"POL-2025-000001"`)
	assert.Contains(t, body, `"type":"Auto"`)
	assert.Contains(t, body, `"status":"Active"`)
	assert.Contains(t, body, `"endDate":"2026-07-01T00:00:00Z"`)
	assert.Len(t, s.policies.byID, 1)
}

func TestPolicyHandler_CreateRejectsBadInput(t *testing.T) {
	s := newTestServer(t)
	tok := s.tokenFor(t, customerID)

	cases := map[string]string{
		"coverage below minimum": `{"type":2,"coverageAmount":999,"startDate":"2025-07-01","durationMonths":12}`,
		"unknown type":           `{"type":5,"coverageAmount":5000,"startDate":"2025-07-01","durationMonths":12}`,
		"term too long":          `{"type":1,"coverageAmount":5000,"startDate":"2025-07-01","durationMonths":61}`,
		"missing start":          `{"type":1,"coverageAmount":5000,"durationMonths":6}`,
		"malformed start":        `{"type":1,"coverageAmount":5000,"startDate":"July 1st","durationMonths":6}`,
		"sub-cent coverage":      `{"type":1,"coverageAmount":5000.005,"startDate":"2025-07-01","durationMonths":6}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/api/policy", tok, body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
	assert.Empty(t, s.policies.byID)
}

func TestPolicyHandler_AccessRules(t *testing.T) {
	s := newTestServer(t)
	customerTok := s.tokenFor(t, customerID)
	adminTok := s.tokenFor(t, adminID)

	w := s.do(http.MethodPost, "/api/policy", adminTok,
		fmt.Sprintf(`{"userId":%q,"type":1,"coverageAmount":10000,"startDate":"2025-01-01","durationMonths":24}`, customerID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &created))

	w = s.do(http.MethodGet, "/api/policy/"+created.ID, customerTok, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/policy/not-a-uuid", customerTok, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/policy/"+adminID, customerTok, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodDelete, "/api/policy/"+created.ID, customerTok, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodDelete, "/api/policy/"+created.ID, adminTok, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, entity.PolicyCancelled, s.policies.byID[created.ID].Status)

	w = s.do(http.MethodGet, "/api/policy", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/policy", customerTok, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
}
