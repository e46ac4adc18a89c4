package router

import (
	"database/sql"
	"net/http"
	"os"
	"time"

	_ "cat-tnr-registry/docs" // spec OpenAPI generada
	jwtadapter "cat-tnr-registry/internal/adapters/auth/jwt"
	mem "cat-tnr-registry/internal/adapters/storage/memory"
	pg "cat-tnr-registry/internal/adapters/storage/postgres"
	"cat-tnr-registry/internal/domain/cats"
	"cat-tnr-registry/internal/domain/geo"
	"cat-tnr-registry/internal/domain/history"
	"cat-tnr-registry/internal/domain/users"
	"cat-tnr-registry/internal/middleware"
	"cat-tnr-registry/internal/platform/logger"
	"cat-tnr-registry/internal/platform/metrics"
	"cat-tnr-registry/internal/policy"
	"cat-tnr-registry/internal/ports/auth"
	"cat-tnr-registry/internal/ports/geocoding"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	// Opcional: si viene (o hay DB_DSN en env), usa Postgres. Si no, in-memory.
	DB *sql.DB

	// JWTSecret vacío => modo dev: principal por headers X-Debug-*.
	JWTSecret string
	JWTTTL    time.Duration

	// Geocoder puede ser nil: el alta de gatos degrada a address vacía
	// y /geocode responde 503.
	Geocoder       geocoding.Geocoder
	GeocodeTimeout time.Duration

	Logger logger.Logger
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop{}
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	mets, reg := metrics.New()
	r.Use(mets.Instrument)

	// Repos: Postgres si hay DB, si no in-memory (dev/tests).
	var (
		catRepo  cats.Repository
		ledger   history.Repository
		userRepo users.Repository
	)

	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			if opened, err := pg.Open(dsn); err == nil {
				db = opened
			} else {
				log.Warn("postgres unavailable, falling back to in-memory", map[string]any{"err": err.Error()})
			}
		}
	}

	var usersSvc *users.Service
	if db != nil {
		catRepo = pg.NewCatsRepo(db)
		ledger = pg.NewHistoryRepo(db)
		userRepo = pg.NewUsersRepo(db)
		usersSvc = users.NewService(userRepo)
	} else {
		userRepo = mem.NewUserRepo()
		usersSvc = users.NewService(userRepo)
		store := mem.NewCatRepo(usersSvc)
		catRepo = store
		ledger = store
	}

	catsSvc := cats.NewService(catRepo, ledger, cats.ServiceOptions{
		Geocoder:       opts.Geocoder,
		GeocodeTimeout: opts.GeocodeTimeout,
		Logger:         log,
		Metrics:        mets,
	})

	// Sesiones JWT; sin secret queda el modo dev por headers.
	var (
		verifier auth.AuthVerifier
		issuer   users.TokenIssuer
	)
	if opts.JWTSecret != "" {
		if iss, err := jwtadapter.NewIssuer(opts.JWTSecret, opts.JWTTTL); err == nil {
			issuer = iss
		}
		if ver, err := jwtadapter.NewVerifier(opts.JWTSecret, usersSvc); err == nil {
			verifier = ver
		}
	}

	r.Use(middleware.AuthContext(verifier))

	// --- público ---
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler(reg))
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	users.RegisterAuthRoutes(r, usersSvc, issuer)

	// --- staff: autenticado + aprobado ---
	r.Group(func(gr chi.Router) {
		gr.Use(middleware.Require(policy.ClassStaff, log, mets))
		cats.RegisterRoutes(gr, catsSvc)
		geo.RegisterRoutes(gr, opts.Geocoder)
	})

	// --- admin ---
	r.Group(func(gr chi.Router) {
		gr.Use(middleware.Require(policy.ClassAdmin, log, mets))
		users.RegisterAdminRoutes(gr, usersSvc)
	})

	return r
}
