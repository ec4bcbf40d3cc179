package router

import (
	"github.com/gin-gonic/gin"

	"github.com/obakengshepherd/InsureClaim/internal/application"
	"github.com/obakengshepherd/InsureClaim/internal/container"
	"github.com/obakengshepherd/InsureClaim/internal/domain/identifier"
	"github.com/obakengshepherd/InsureClaim/internal/domain/premium"
	"github.com/obakengshepherd/InsureClaim/internal/infrastructure/messaging"
	pginfra "github.com/obakengshepherd/InsureClaim/internal/infrastructure/postgres"
	"github.com/obakengshepherd/InsureClaim/internal/infrastructure/search"
	"github.com/obakengshepherd/InsureClaim/internal/infrastructure/storage"
	handlers "github.com/obakengshepherd/InsureClaim/internal/interface/http"
	"github.com/obakengshepherd/InsureClaim/internal/interface/middleware"
	"github.com/obakengshepherd/InsureClaim/internal/router/modules"
	"github.com/obakengshepherd/InsureClaim/pkg/helpers"
)

type moduleDeps struct {
	Auth    *handlers.AuthHandler
	Policy  *handlers.PolicyHandler
	Claim   *handlers.ClaimHandler
	Payment *handlers.PaymentHandler
	// RequireAuth validates bearer tokens against the denylist.
	RequireAuth gin.HandlerFunc
}

func buildDeps() moduleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	users := pginfra.NewUserRepository(pool)
	policies := pginfra.NewPolicyRepository(pool)
	claims := pginfra.NewClaimRepository(pool)
	payments := pginfra.NewPaymentRepository(pool)
	tx := pginfra.NewTxManager(pool)
	ids := identifier.NewGenerator(pginfra.NewSequenceRepository(pool))

	rounding, err := premium.ParseRounding(cfg.PremiumRounding)
	if err != nil {
		logger.WithError(err).Warn("unknown premium rounding, using half_away")
	}

	var events application.EventPublisher
	if pub := container.GetRabbitPub(); pub != nil {
		var counter messaging.EventCounter
		if m := container.GetMetrics(); m != nil {
			counter = m
		}
		events = messaging.NewPublisher(pub, counter)
	}

	var denylist *helpers.TokenDenylist
	var revoked middleware.RevocationChecker
	if rdb := container.GetRedis(); rdb != nil {
		denylist = helpers.NewTokenDenylist(rdb)
		revoked = denylist
	}

	authSvc := application.NewAuthService(users, container.GetJWT(), nil, logger)
	authSvc.AllowAdminSignup = cfg.AdminSignup
	if denylist != nil {
		authSvc.Revoker = denylist
	}

	policySvc := application.NewPolicyService(policies, users, tx, ids, premium.Calculator{Rounding: rounding}, events, logger)

	claimSvc := application.NewClaimService(claims, policies, users, tx, ids, logger)
	claimSvc.Events = events
	claimSvc.StrictTransitions = cfg.ClaimStrictTransitions
	if es := container.GetES(); es != nil {
		idx := search.NewClaimIndex(es, cfg.ESClaimsIndex)
		if m := container.GetMetrics(); m != nil {
			idx.Errors = m
		}
		claimSvc.Index = idx
	}
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		claimSvc.Documents = storage.NewDocuments(gcs, cfg.GCSBucket, cfg.MaxDocumentBytes)
	}

	paymentSvc := application.NewPaymentService(payments, policies, users, tx, ids, events, logger)

	return moduleDeps{
		Auth:        handlers.NewAuthHandler(authSvc, logger),
		Policy:      handlers.NewPolicyHandler(policySvc, logger),
		Claim:       handlers.NewClaimHandler(claimSvc, logger, cfg.MaxDocumentBytes),
		Payment:     handlers.NewPaymentHandler(paymentSvc, logger),
		RequireAuth: middleware.Auth(container.GetJWT(), revoked, logger),
	}
}

// InitModules builds services over the container's infrastructure and
// registers every feature module. Call once at startup.
func InitModules(r *Registry) {
	deps := buildDeps()
	r.Add(modules.NewAuthModule(deps.Auth, deps.RequireAuth))
	r.Add(modules.NewPolicyModule(deps.Policy, deps.RequireAuth))
	r.Add(modules.NewClaimModule(deps.Claim, deps.RequireAuth))
	r.Add(modules.NewPaymentModule(deps.Payment, deps.RequireAuth))
	if m := container.GetMetrics(); m != nil && container.GetConfig().MetricsEnabled {
		r.Add(modules.NewMetricsModule(m))
	}
}
