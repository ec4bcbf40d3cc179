package application_test

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/obakengshepherd/InsureClaim/internal/application"
	"github.com/obakengshepherd/InsureClaim/internal/domain/entity"
	"github.com/obakengshepherd/InsureClaim/internal/domain/repository"
)

type memUsers struct {
	mu   sync.Mutex
	byID map[string]entity.User
}

func newMemUsers(users ...entity.User) *memUsers {
	m := &memUsers{byID: map[string]entity.User{}}
	for _, u := range users {
		m.byID[u.ID] = u
	}
	return m
}

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if strings.EqualFold(existing.Email, u.Email) {
			return fmt.Errorf("create user: %w", entity.ErrConflict)
		}
	}
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) Upsert(ctx context.Context, u *entity.User) error {
	m.mu.Lock()
	m.byID[u.ID] = *u
	m.mu.Unlock()
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", entity.ErrNotFound)
	}
	return &u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, fmt.Errorf("get user by email: %w", entity.ErrNotFound)
}

type memPolicies struct {
	mu   sync.Mutex
	byID map[string]entity.Policy
}

func newMemPolicies(policies ...entity.Policy) *memPolicies {
	m := &memPolicies{byID: map[string]entity.Policy{}}
	for _, p := range policies {
		m.byID[p.ID] = p
	}
	return m
}

func (m *memPolicies) Create(_ context.Context, p *entity.Policy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[p.ID] = *p
	return nil
}

func (m *memPolicies) GetByID(_ context.Context, id string) (*entity.Policy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("get policy: %w", entity.ErrNotFound)
	}
	return &p, nil
}

func (m *memPolicies) List(_ context.Context, ownerID string) ([]entity.Policy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []entity.Policy{}
	for _, p := range m.byID {
		if ownerID == "" || p.UserID == ownerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PolicyNumber < out[j].PolicyNumber })
	return out, nil
}

func (m *memPolicies) Update(_ context.Context, p *entity.Policy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[p.ID]; !ok {
		return entity.ErrNotFound
	}
	m.byID[p.ID] = *p
	return nil
}

type memClaims struct {
	mu   sync.Mutex
	byID map[string]entity.Claim
}

func newMemClaims() *memClaims { return &memClaims{byID: map[string]entity.Claim{}} }

func (m *memClaims) Create(_ context.Context, c *entity.Claim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[c.ID] = *c
	return nil
}

func (m *memClaims) GetByID(_ context.Context, id string) (*entity.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("get claim: %w", entity.ErrNotFound)
	}
	return &c, nil
}

func (m *memClaims) GetForUpdate(ctx context.Context, id string) (*entity.Claim, error) {
	return m.GetByID(ctx, id)
}

func (m *memClaims) List(_ context.Context, f repository.ClaimFilter) ([]entity.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []entity.Claim{}
	for _, c := range m.byID {
		if (f.UserID == "" || c.UserID == f.UserID) && (f.PolicyID == "" || c.PolicyID == f.PolicyID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClaimNumber < out[j].ClaimNumber })
	return out, nil
}

// Update mirrors the SQL: the document path column is left alone.
func (m *memClaims) Update(_ context.Context, c *entity.Claim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byID[c.ID]
	if !ok {
		return fmt.Errorf("update claim: %w", entity.ErrNotFound)
	}
	next := *c
	next.DocumentPath = stored.DocumentPath
	m.byID[c.ID] = next
	return nil
}

func (m *memClaims) SetDocumentPath(_ context.Context, id, path string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("set claim document: %w", entity.ErrNotFound)
	}
	c.DocumentPath = &path
	c.UpdatedAt = at
	m.byID[id] = c
	return nil
}

func (m *memClaims) Totals(_ context.Context) ([]entity.ClaimTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	agg := map[entity.ClaimStatus]*entity.ClaimTotal{}
	for _, c := range m.byID {
		t, ok := agg[c.Status]
		if !ok {
			t = &entity.ClaimTotal{Status: c.Status}
			agg[c.Status] = t
		}
		t.Count++
		t.Claimed = t.Claimed.Add(c.ClaimAmount)
		if c.ApprovedAmount.Valid {
			t.Approved = t.Approved.Add(c.ApprovedAmount.Decimal)
		}
	}
	out := []entity.ClaimTotal{}
	for _, t := range agg {
		out = append(out, *t)
	}
	return out, nil
}

type memPayments struct {
	mu       sync.Mutex
	byID     map[string]entity.Payment
	policies *memPolicies
}

func newMemPayments(policies *memPolicies) *memPayments {
	return &memPayments{byID: map[string]entity.Payment{}, policies: policies}
}

func (m *memPayments) Create(_ context.Context, p *entity.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[p.ID] = *p
	return nil
}

func (m *memPayments) GetByID(_ context.Context, id string) (*entity.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("get payment: %w", entity.ErrNotFound)
	}
	return &p, nil
}

func (m *memPayments) List(ctx context.Context, f repository.PaymentFilter) ([]entity.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []entity.Payment{}
	for _, p := range m.byID {
		if f.PolicyID != "" && p.PolicyID != f.PolicyID {
			continue
		}
		if f.OwnerID != "" {
			pol, err := m.policies.GetByID(ctx, p.PolicyID)
			if err != nil || pol.UserID != f.OwnerID {
				continue
			}
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TransactionID < out[j].TransactionID })
	return out, nil
}

func (m *memPayments) Update(_ context.Context, p *entity.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[p.ID] = *p
	return nil
}

func (m *memPayments) Totals(_ context.Context) ([]entity.PaymentTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	type k struct {
		s entity.PaymentStatus
		m entity.PaymentMethod
	}
	agg := map[k]*entity.PaymentTotal{}
	for _, p := range m.byID {
		key := k{p.Status, p.Method}
		t, ok := agg[key]
		if !ok {
			t = &entity.PaymentTotal{Status: p.Status, Method: p.Method, Amount: decimal.Zero}
			agg[key] = t
		}
		t.Count++
		t.Amount = t.Amount.Add(p.Amount)
	}
	out := []entity.PaymentTotal{}
	for _, t := range agg {
		out = append(out, *t)
	}
	return out, nil
}

// inlineTx runs fn directly; the fakes have no rollback.
type inlineTx struct{}

func (inlineTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []application.Event
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, e application.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingIndexer struct {
	mu      sync.Mutex
	indexed []string
	hits    []application.ClaimSearchHit
}

func (r *recordingIndexer) IndexClaim(_ context.Context, c *entity.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indexed = append(r.indexed, c.ClaimNumber)
	return nil
}

func (r *recordingIndexer) SearchClaims(_ context.Context, _ string, size int) ([]application.ClaimSearchHit, error) {
	if len(r.hits) > size {
		return r.hits[:size], nil
	}
	return r.hits, nil
}

type memDocuments struct {
	objects map[string]string
	// during runs while the upload is in flight.
	during  func()
}

func (m *memDocuments) Put(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if m.during != nil {
		m.during()
	}
	if m.objects == nil {
		m.objects = map[string]string{}
	}
	m.objects[objectPath] = string(b)
	return "gs://test-bucket/" + objectPath, nil
}

type memRevoker struct {
	revoked map[string]time.Time
}

func (m *memRevoker) Revoke(_ context.Context, jti string, until time.Time) error {
	if m.revoked == nil {
		m.revoked = map[string]time.Time{}
	}
	m.revoked[jti] = until
	return nil
}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }
