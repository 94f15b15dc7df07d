// Package api exposes the workbook over HTTP for the browser client.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"invoicer/internal/invoice"
	"invoicer/internal/logger"
)

// Options configures the router.
type Options struct {
	AuthUser       string // basic auth is off when user and password are empty
	AuthPass       string
	AllowedOrigins []string
}

// Server holds the handler dependencies.
type Server struct {
	wb  *invoice.Workbook
	log zerolog.Logger
}

// NewRouter builds the HTTP handler for wb.
func NewRouter(wb *invoice.Workbook, opts Options) http.Handler {
	s := &Server{wb: wb, log: logger.WithComponent("api")}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(basicAuth(opts.AuthUser, opts.AuthPass))

		r.Get("/settings", s.getSettings)
		r.Put("/settings", s.putSettings)

		r.Get("/company", s.getCompany)
		r.Put("/company", s.putCompany)

		r.Get("/current", s.getCurrent)
		r.Put("/current", s.putCurrent)

		r.Post("/totals", s.computeTotals)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.listProducts)
			r.Post("/", s.createProduct)
			r.Get("/{id}", s.getProduct)
			r.Put("/{id}", s.updateProduct)
			r.Delete("/{id}", s.deleteProduct)
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", s.listInvoices)
			r.Post("/", s.createInvoice)
			r.Post("/batch-delete", s.batchDeleteInvoices)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getInvoice)
				r.Put("/", s.updateInvoice)
				r.Delete("/", s.deleteInvoice)
				r.Post("/duplicate", s.duplicateInvoice)
				r.Get("/totals", s.invoiceTotals)
				r.Get("/preview", s.invoicePreview)
				r.Get("/pdf", s.invoicePDF)

				r.Post("/items", s.addItem)
				r.Put("/items/{itemID}", s.updateItem)
				r.Delete("/items/{itemID}", s.removeItem)
			})
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: opts.AuthUser != "",
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
	})
	return c.Handler(r)
}

// NewHTTPServer wraps the router with the server timeouts.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// requestLogger logs one line per request with the chi request id.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log := logger.WithRequestID(middleware.GetReqID(r.Context()))
		ev := log.Info()
		if ww.Status() >= http.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

// basicAuth enforces HTTP Basic Authentication when credentials are set.
func basicAuth(user, pass string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if user == "" && pass == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, p, ok := r.BasicAuth()
			if !ok || u != user || p != pass {
				w.Header().Set("WWW-Authenticate", `Basic realm="invoicer"`)
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
