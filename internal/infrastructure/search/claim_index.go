// Package search keeps claims in an Elasticsearch index for free-text
// lookup by adjusters.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"

	"github.com/obakengshepherd/InsureClaim/internal/application"
	"github.com/obakengshepherd/InsureClaim/internal/domain/entity"
	"github.com/obakengshepherd/InsureClaim/internal/infrastructure/resilience"
)

const requestTimeout = 3 * time.Second

// ErrorCounter records failed calls to an external dependency.
type ErrorCounter interface {
	IncrExternalError(service string)
}

// ClaimIndex implements application.ClaimIndexer.
type ClaimIndex struct {
	es      *elasticsearch.Client
	index   string
	breaker *gobreaker.CircuitBreaker
	// Errors is optional.
	Errors  ErrorCounter
}

func NewClaimIndex(es *elasticsearch.Client, index string) *ClaimIndex {
	return &ClaimIndex{es: es, index: index, breaker: resilience.NewCircuitBreaker("elasticsearch")}
}

type claimDoc struct {
	ID           string          `json:"id"`
	ClaimNumber  string          `json:"claim_number"`
	PolicyNumber string          `json:"policy_number"`
	UserID       string          `json:"user_id"`
	Description  string          `json:"description"`
	ReviewNotes  string          `json:"review_notes,omitempty"`
	Status       string          `json:"status"`
	ClaimAmount  decimal.Decimal `json:"claim_amount"`
	IncidentDate string          `json:"incident_date"`
	UpdatedAt    string          `json:"updated_at"`
}

func toDoc(c *entity.Claim) claimDoc {
	d := claimDoc{
		ID:           c.ID,
		ClaimNumber:  c.ClaimNumber,
		PolicyNumber: c.PolicyNumber,
		UserID:       c.UserID,
		Description:  c.Description,
		Status:       c.Status.String(),
		ClaimAmount:  c.ClaimAmount,
		IncidentDate: c.IncidentDate.Format("2006-01-02"),
		UpdatedAt:    c.UpdatedAt.Format(time.RFC3339Nano),
	}
	if c.ReviewNotes != nil {
		d.ReviewNotes = *c.ReviewNotes
	}
	return d
}

func (x *ClaimIndex) IndexClaim(ctx context.Context, c *entity.Claim) error {
	b, err := json.Marshal(toDoc(c))
	if err != nil {
		return err
	}
	_, err = resilience.Execute(x.breaker, func() (struct{}, error) {
		req := esapi.IndexRequest{Index: x.index, DocumentID: c.ID, Body: bytes.NewReader(b), Refresh: "false"}
		rc, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		res, err := req.Do(rc, x.es)
		if err != nil {
			return struct{}{}, err
		}
		defer func() { _ = res.Body.Close() }()
		if res.IsError() {
			return struct{}{}, fmt.Errorf("index claim %s: %s", c.ClaimNumber, res.Status())
		}
		return struct{}{}, nil
	})
	x.observe(err)
	return err
}

func (x *ClaimIndex) observe(err error) {
	if err != nil && x.Errors != nil {
		x.Errors.IncrExternalError("elasticsearch")
	}
}

// searchQuery is a multi_match over the free-text claim fields.
func searchQuery(q string, size int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"claim_number^3", "policy_number^2", "description", "review_notes"},
			},
		},
		"size": size,
	}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Score  float64  `json:"_score"`
			Source claimDoc `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (r searchResponse) toHits() []application.ClaimSearchHit {
	out := make([]application.ClaimSearchHit, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		out = append(out, application.ClaimSearchHit{
			ID:           h.Source.ID,
			ClaimNumber:  h.Source.ClaimNumber,
			PolicyNumber: h.Source.PolicyNumber,
			Description:  h.Source.Description,
			Status:       h.Source.Status,
			ClaimAmount:  h.Source.ClaimAmount,
			Score:        h.Score,
		})
	}
	return out
}

func (x *ClaimIndex) SearchClaims(ctx context.Context, q string, size int) ([]application.ClaimSearchHit, error) {
	b, err := json.Marshal(searchQuery(q, size))
	if err != nil {
		return nil, err
	}
	hits, err := resilience.Execute(x.breaker, func() ([]application.ClaimSearchHit, error) {
		rc, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		res, err := x.es.Search(
			x.es.Search.WithContext(rc),
			x.es.Search.WithIndex(x.index),
			x.es.Search.WithBody(bytes.NewReader(b)),
		)
		if err != nil {
			return nil, err
		}
		defer func() { _ = res.Body.Close() }()
		if res.IsError() {
			return nil, fmt.Errorf("search claims: %s", res.Status())
		}
		var parsed searchResponse
		if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
			return nil, err
		}
		return parsed.toHits(), nil
	})
	x.observe(err)
	return hits, err
}
