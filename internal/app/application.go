// Package app wires the referral platform services together.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fitmova/platform/internal/app/services/attribution"
	careersvc "github.com/fitmova/platform/internal/app/services/career"
	commissionsvc "github.com/fitmova/platform/internal/app/services/commission"
	ledgersvc "github.com/fitmova/platform/internal/app/services/ledger"
	"github.com/fitmova/platform/internal/app/services/members"
	paymentsvc "github.com/fitmova/platform/internal/app/services/payments"
	planssvc "github.com/fitmova/platform/internal/app/services/plans"
	"github.com/fitmova/platform/internal/app/storage"
	"github.com/fitmova/platform/internal/app/storage/memory"
	"github.com/fitmova/platform/internal/app/system"
	"github.com/fitmova/platform/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Members     storage.MemberStore
	Commissions storage.CommissionStore
	Ledger      storage.LedgerStore
	Career      storage.CareerStore
	Plans       storage.PlanStore
}

// Options configure the optional external collaborators. Empty URLs leave
// the corresponding feature disabled.
type Options struct {
	PlansProviderURL  string
	PlansProviderKey  string
	PayoutResolverURL string
	PayoutResolverKey string
	CareerSchedule    string
}

// OptionsFromEnv reads collaborator settings from the environment.
func OptionsFromEnv() Options {
	return Options{
		PlansProviderURL:  strings.TrimSpace(os.Getenv("PLANS_PROVIDER_URL")),
		PlansProviderKey:  os.Getenv("PLANS_PROVIDER_KEY"),
		PayoutResolverURL: strings.TrimSpace(os.Getenv("PAYOUT_RESOLVER_URL")),
		PayoutResolverKey: os.Getenv("PAYOUT_RESOLVER_KEY"),
		CareerSchedule:    os.Getenv("CAREER_SCHEDULE"),
	}
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Members     *members.Service
	Attribution *attribution.Resolver
	Commissions *commissionsvc.Service
	Ledger      *ledgersvc.Service
	Career      *careersvc.Service
	Plans       *planssvc.Service
	Payments    *paymentsvc.Service
}

// New builds a fully initialised application with the provided stores,
// reading collaborator settings from the environment.
func New(stores Stores, log *logger.Logger) (*Application, error) {
	return NewWithOptions(stores, OptionsFromEnv(), log)
}

// NewWithOptions builds a fully initialised application with the provided
// stores and collaborator options.
func NewWithOptions(stores Stores, opts Options, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Members == nil {
		stores.Members = mem
	}
	if stores.Commissions == nil {
		stores.Commissions = mem
	}
	if stores.Ledger == nil {
		stores.Ledger = mem
	}
	if stores.Career == nil {
		stores.Career = mem
	}
	if stores.Plans == nil {
		stores.Plans = mem
	}

	manager := system.NewManager()

	memberService := members.New(stores.Members, log)
	resolver := attribution.NewResolver(stores.Members)
	commissionService := commissionsvc.New(stores.Members, stores.Commissions, stores.Ledger, nil, log)
	ledgerService := ledgersvc.New(stores.Members, stores.Ledger, log)
	careerService := careersvc.New(stores.Members, stores.Commissions, stores.Career, log)
	paymentService := paymentsvc.New(memberService, commissionService, log)

	httpClient := &http.Client{Timeout: 10 * time.Second}

	var generator planssvc.Generator
	if opts.PlansProviderURL != "" {
		g, err := planssvc.NewHTTPGenerator(httpClient, opts.PlansProviderURL, opts.PlansProviderKey, log)
		if err != nil {
			log.WithError(err).Warn("configure plans generator")
		} else {
			generator = g
		}
	} else {
		log.Warn("plans provider not configured; plan generation disabled")
	}
	plansService := planssvc.New(stores.Members, stores.Plans, generator, log)

	for _, name := range []string{"members", "commissions", "ledger"} {
		if err := manager.Register(system.NoopService{ServiceName: name}); err != nil {
			return nil, fmt.Errorf("register %s service: %w", name, err)
		}
	}

	careerRunner := careersvc.NewRunner(careerService, opts.CareerSchedule, log)

	var payout system.Service
	if opts.PayoutResolverURL != "" {
		payoutResolver, err := ledgersvc.NewHTTPResolver(httpClient, opts.PayoutResolverURL, opts.PayoutResolverKey, log)
		if err != nil {
			log.WithError(err).Warn("configure payout resolver")
		} else {
			payout = ledgersvc.NewPayoutPoller(stores.Ledger, ledgerService, payoutResolver, log)
		}
	} else {
		log.Warn("payout resolver not configured; withdrawal settlement disabled")
	}

	services := []system.Service{careerRunner}
	if payout != nil {
		services = append(services, payout)
	}
	for _, svc := range services {
		if err := manager.Register(svc); err != nil {
			return nil, fmt.Errorf("register %s: %w", svc.Name(), err)
		}
	}

	return &Application{
		manager:     manager,
		log:         log,
		Members:     memberService,
		Attribution: resolver,
		Commissions: commissionService,
		Ledger:      ledgerService,
		Career:      careerService,
		Plans:       plansService,
		Payments:    paymentService,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
