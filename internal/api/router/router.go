package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"github.com/unrolled/secure"

	"stockui/config"
	"stockui/docs"
	"stockui/internal/api/product"
	"stockui/internal/api/stock"
	"stockui/internal/pkg/cache"
	"stockui/internal/pkg/i18n"
	"stockui/internal/pkg/logger"
	"stockui/internal/pkg/middleware"
)

// Params agrupa as dependências para montar o roteador.
type Params struct {
	Config         *config.Config
	Logger         logger.Logger
	Cache          cache.Client
	ProductHandler *product.Handler
	StockHandler   *stock.Handler
}

// NewRouter configura e retorna o roteador HTTP principal.
// Recebe os Handlers já inicializados por injeção de dependências.
func NewRouter(p Params) http.Handler {
	r := chi.NewRouter()

	// --- 1. Middlewares Globais ---
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        p.Config.IsProduction(),
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:      !p.Config.IsProduction(),
	})

	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(secureMiddleware.Handler)

	// --- 2. Health Check (fora do rate limit) ---
	r.Get("/ping", PingHandler)

	// --- 3. Documentação ---
	r.Get("/swagger/doc.json", docs.Handler)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// --- 4. Rotas da interface (v1): sessão, idioma e rate limit ---
	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(middleware.RateLimiter(p.Cache, p.Logger, p.Config.RateLimitMaxRequests, p.Config.RateLimitPeriod))
		v1.Use(middleware.NewSessionMiddleware(p.Config.IsProduction(), p.Config.SessionTTL))
		v1.Use(middleware.NewLocaleMiddleware(i18n.ParseTag(p.Config.DefaultLocale)))

		ph := p.ProductHandler
		v1.Route("/products", func(pr chi.Router) {
			pr.Get("/", ph.ListProductsHandler)
			pr.Put("/filters", ph.SetFiltersHandler)
			pr.Delete("/filters", ph.ResetFiltersHandler)
			pr.Post("/{id}/delete", ph.RequestDeleteHandler)
			pr.Post("/delete/confirm", ph.ConfirmDeleteHandler)
			pr.Post("/delete/cancel", ph.CancelDeleteHandler)
		})

		v1.Route("/forms", func(fr chi.Router) {
			fr.Get("/create", ph.GetCreateFormHandler)
			fr.Patch("/create", ph.PatchCreateFormHandler)
			fr.Post("/create/submit", ph.SubmitCreateFormHandler)
			fr.Post("/create/dismiss", ph.DismissCreateFormHandler)

			fr.Get("/edit/{id}", ph.GetEditFormHandler)
			fr.Patch("/edit/{id}", ph.PatchEditFormHandler)
			fr.Post("/edit/{id}/submit", ph.SubmitEditFormHandler)
			fr.Post("/edit/{id}/dismiss", ph.DismissEditFormHandler)

			sh := p.StockHandler
			fr.Get("/movement", sh.GetMovementFormHandler)
			fr.Patch("/movement", sh.PatchMovementFormHandler)
			fr.Post("/movement/submit", sh.SubmitMovementFormHandler)
			fr.Post("/movement/dismiss", sh.DismissMovementFormHandler)
		})
	})

	return r
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}
