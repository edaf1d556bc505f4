package listingservice

import (
	"log/slog"
	"time"

	httpadapter "autoboard/contexts/marketplace/listing-service/adapters/http"
	"autoboard/contexts/marketplace/listing-service/adapters/memory"
	"autoboard/contexts/marketplace/listing-service/adapters/security"
	application "autoboard/contexts/marketplace/listing-service/application"
	"autoboard/contexts/marketplace/listing-service/application/commands"
	"autoboard/contexts/marketplace/listing-service/application/fanout"
	"autoboard/contexts/marketplace/listing-service/application/queries"
	"autoboard/contexts/marketplace/listing-service/domain/entities"
	"autoboard/contexts/marketplace/listing-service/domain/services"
	"autoboard/contexts/marketplace/listing-service/ports"

	"golang.org/x/crypto/bcrypt"
)

// Module is the composition surface of the listing service.
// Runtime wiring consumes Handler; the in-memory adapters are exposed for
// tests and inspection.
type Module struct {
	Handler httpadapter.Handler

	Store     *memory.Store
	Mailbox   *memory.Mailbox
	PageCache *memory.PageCache
	Index     *memory.CatalogIndex
}

type Dependencies struct {
	Listings      ports.ListingRepository
	Favorites     ports.FavoriteRepository
	Notifications ports.NotificationRepository
	Audit         ports.AuditRepository
	Profiles      ports.ProfileDirectory
	Email         ports.EmailSender
	Moderator     ports.ContentModerator
	Cache         ports.CacheInvalidator
	Search        ports.SearchIndex
	Push          ports.PushPublisher
	Hasher        ports.CodeHasher
	Clock         ports.Clock
	IDGenerator   ports.IDGenerator
	Metrics       ports.Metrics

	BaseQuota              int
	VerificationTTL        time.Duration
	MaxVerificationAttempt int
	BreakGlassEmail        string
	PublicBaseURL          string
	FanOutConcurrency      int
	Logger                 *slog.Logger
}

func NewModule(deps Dependencies) Module {
	authorizer := application.Authorizer{
		Profiles:        deps.Profiles,
		BreakGlassEmail: deps.BreakGlassEmail,
		Logger:          deps.Logger,
	}
	engine := fanout.Engine{
		Listings:  deps.Listings,
		Favorites: deps.Favorites,
		Profiles:  deps.Profiles,
		Dispatcher: fanout.Dispatcher{
			Notifications: deps.Notifications,
			Push:          deps.Push,
			Clock:         deps.Clock,
			IDGen:         deps.IDGenerator,
			Metrics:       deps.Metrics,
			Concurrency:   deps.FanOutConcurrency,
			Logger:        deps.Logger,
		},
		BaseURL: deps.PublicBaseURL,
		Logger:  deps.Logger,
	}
	invalidation := commands.Invalidation{
		Cache:  deps.Cache,
		Search: deps.Search,
		Logger: deps.Logger,
	}
	quota := queries.QuotaEvaluator{
		Listings: deps.Listings,
		Profiles: deps.Profiles,
		Limits:   services.QuotaLimits{BaseLimit: deps.BaseQuota},
		Logger:   deps.Logger,
	}
	verification := commands.VerificationUseCase{
		Listings:     deps.Listings,
		Hasher:       deps.Hasher,
		Email:        deps.Email,
		FanOut:       engine,
		Invalidation: invalidation,
		Clock:        deps.Clock,
		CodeTTL:      deps.VerificationTTL,
		MaxAttempts:  deps.MaxVerificationAttempt,
		Logger:       deps.Logger,
	}

	handler := httpadapter.Handler{
		Submit: commands.SubmitListingUseCase{
			Listings:     deps.Listings,
			Moderator:    deps.Moderator,
			Quota:        quota,
			Verification: verification,
			FanOut:       engine,
			Invalidation: invalidation,
			Clock:        deps.Clock,
			IDGen:        deps.IDGenerator,
			Metrics:      deps.Metrics,
			Logger:       deps.Logger,
		},
		Update: commands.UpdateListingUseCase{
			Listings:     deps.Listings,
			Moderator:    deps.Moderator,
			Authorizer:   authorizer,
			FanOut:       engine,
			Invalidation: invalidation,
			Clock:        deps.Clock,
			Logger:       deps.Logger,
		},
		Delete: commands.DeleteListingUseCase{
			Listings:     deps.Listings,
			Audit:        deps.Audit,
			Authorizer:   authorizer,
			FanOut:       engine,
			Invalidation: invalidation,
			Clock:        deps.Clock,
			IDGen:        deps.IDGenerator,
			Logger:       deps.Logger,
		},
		Verification: verification,
		Moderation: commands.ModerationUseCase{
			Listings:     deps.Listings,
			Audit:        deps.Audit,
			Authorizer:   authorizer,
			FanOut:       engine,
			Invalidation: invalidation,
			Clock:        deps.Clock,
			IDGen:        deps.IDGenerator,
			Metrics:      deps.Metrics,
			Logger:       deps.Logger,
		},
		Favorites: commands.FavoritesUseCase{
			Listings:  deps.Listings,
			Favorites: deps.Favorites,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		},
		Notifications: commands.NotificationInboxUseCase{
			Notifications: deps.Notifications,
			Clock:         deps.Clock,
		},
		Queries: queries.QueryUseCase{
			Listings:      deps.Listings,
			Notifications: deps.Notifications,
			Audit:         deps.Audit,
			Authorizer:    authorizer,
			Logger:        deps.Logger,
		},
		Quota:  quota,
		Logger: deps.Logger,
	}

	return Module{Handler: handler}
}

// NewInMemoryModule wires the listing service against in-memory adapters.
// It backs local runs and the HTTP tests.
func NewInMemoryModule(seed []entities.Listing, profiles []entities.Profile, logger *slog.Logger) Module {
	store := memory.NewStore(seed, profiles)
	mailbox := memory.NewMailbox()
	cache := memory.NewPageCache()
	index := memory.NewCatalogIndex()
	module := NewModule(Dependencies{
		Listings:        store,
		Favorites:       store,
		Notifications:   store,
		Audit:           store,
		Profiles:        store,
		Email:           mailbox,
		Moderator:       memory.NewKeywordModerator(nil),
		Cache:           cache,
		Search:          index,
		Hasher:          security.NewBcryptHasher(bcrypt.MinCost),
		Clock:           store,
		IDGenerator:     store,
		BaseQuota:       services.DefaultBaseQuota,
		VerificationTTL: commands.DefaultVerificationTTL,
		Logger:          logger,
	})
	module.Store = store
	module.Mailbox = mailbox
	module.PageCache = cache
	module.Index = index
	return module
}
