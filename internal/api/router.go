package api

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/starter-web/internal/api/handlers"
	"github.com/isdelr/starter-web/internal/auth"
	"github.com/isdelr/starter-web/internal/logger"
	"github.com/isdelr/starter-web/internal/metrics"
	"github.com/isdelr/starter-web/internal/services"
	"github.com/isdelr/starter-web/internal/views"
)

// Options carries the settings the router needs beyond its services.
type Options struct {
	AllowedOrigins []string
	SecureCookies  bool
	// Static is served under /static/.
	Static fs.FS
}

// NewRouter creates and configures a new Chi router.
func NewRouter(
	opts Options,
	userService services.UserServiceProvider,
	itemService services.ItemServiceProvider,
	engine *views.Engine,
	issuer *auth.Issuer,
	db handlers.Pinger,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.GetHead)
	r.Use(logger.RequestLogger)
	r.Use(metrics.Instrument)
	r.Use(middleware.Recoverer)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, issuer, opts.SecureCookies)
	itemHandler := handlers.NewItemHandler(itemService)
	viewHandler := handlers.NewViewHandler(userService, itemService, engine)
	healthHandler := handlers.NewHealthHandler(db)

	// Error pages render the navbar, so they see the signed-in user too.
	r.NotFound(issuer.Optional(http.HandlerFunc(viewHandler.NotFound)).ServeHTTP)
	r.MethodNotAllowed(issuer.Optional(http.HandlerFunc(viewHandler.MethodNotAllowed)).ServeHTTP)

	r.Get("/healthz", healthHandler.Healthz)
	r.Handle("/metrics", metrics.Handler())
	r.Handle("/static/*", http.StripPrefix("/static", staticHandler(opts.Static)))

	// HTML views
	r.Group(func(r chi.Router) {
		r.Use(issuer.Optional)
		r.Get("/", viewHandler.Home)
		r.Get("/dashboard", viewHandler.Dashboard)
	})

	// JSON API
	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		r.NotFound(handlers.APINotFound)
		r.MethodNotAllowed(handlers.APIMethodNotAllowed)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", userHandler.Login)
			r.Post("/logout", userHandler.Logout)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.GetAll)
			r.Post("/", userHandler.Register)
			r.With(issuer.Middleware).Get("/me", userHandler.GetMe)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", userHandler.Get)
				r.Group(func(r chi.Router) {
					r.Use(issuer.Middleware)
					r.Put("/", userHandler.Update)
					r.Delete("/", userHandler.Delete)
					r.Put("/password", userHandler.ChangePassword)
				})
			})
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", itemHandler.GetAll)
			r.With(issuer.Middleware).Post("/", itemHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", itemHandler.Get)
				r.With(issuer.Middleware).Put("/", itemHandler.Update)
				r.With(issuer.Middleware).Delete("/", itemHandler.Delete)
			})
		})
	})

	return r
}

// staticHandler serves files from fsys without directory listings.
func staticHandler(fsys fs.FS) http.Handler {
	fileServer := http.FileServer(http.FS(fsys))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}
