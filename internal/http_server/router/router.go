package router

import (
	"log/slog"
	"net/http"

	_ "finance_service/docs"
	"finance_service/internal/http_server/handlers/category"
	"finance_service/internal/http_server/handlers/entry"
	"finance_service/internal/http_server/handlers/login"
	"finance_service/internal/http_server/handlers/register"
	"finance_service/internal/http_server/handlers/transactions"
	"finance_service/internal/http_server/handlers/verify"
	"finance_service/internal/http_server/middleware/authn"
	mwLogger "finance_service/internal/http_server/middleware/logger"
	"finance_service/internal/metrics"
	"finance_service/internal/middleware/ratelimit"
	"finance_service/internal/models"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger"
)

type AuthService interface {
	register.UserRegisterer
	login.Authenticator
	verify.Verifier
}

type FinanceService interface {
	category.Creator
	category.Deleter
	category.Getter
	category.Lister
	entry.Creator
	entry.Deleter
	entry.Lister
	transactions.MonthlyReporter
}

type Options struct {
	CORSOrigins []string
	// RateLimit guards register, login and verify per client address.
	RateLimit bool
	Metrics   *metrics.Collector
	Gatherer  prometheus.Gatherer
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	authService AuthService,
	financeService FinanceService,
	opts Options,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(mwLogger.New(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins(opts.CORSOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"WWW-Authenticate"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"hello": "world"})
	})

	if opts.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(opts.Gatherer))
	}

	limit := func(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
		if !opts.RateLimit {
			return func(next http.Handler) http.Handler { return next }
		}
		return mw
	}

	requireUser := authn.New(log, authService)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/v1/docs/doc.json")))

		r.Route("/auth", func(r chi.Router) {
			r.With(limit(ratelimit.Register())).Post("/register", register.New(log, validate, authService))
			r.With(limit(ratelimit.Login())).Post("/login", login.New(log, validate, authService))
			r.With(limit(ratelimit.Verify())).Post("/verify", verify.New(log, authService))
		})

		r.Route("/category", func(r chi.Router) {
			r.Get("/{id}", category.Get(log, financeService))

			r.Group(func(r chi.Router) {
				r.Use(requireUser)

				r.Post("/create", category.Create(log, validate, financeService))
				r.Delete("/delete/{id}", category.Delete(log, financeService))
				r.Get("/list", category.List(log, financeService))
			})
		})

		for _, kind := range []models.Kind{models.KindExpense, models.KindIncoming} {
			r.Route("/"+string(kind), func(r chi.Router) {
				r.Use(requireUser)

				r.Post("/create", entry.Create(log, validate, kind, financeService))
				r.Delete("/delete/{id}", entry.Delete(log, kind, financeService))
				r.Get("/list", entry.List(log, kind, financeService))
			})
		}

		r.With(requireUser).Get("/transactions/monthly-list", transactions.Monthly(log, financeService))
	})

	return r
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}

	return origins
}
