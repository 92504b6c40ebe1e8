package api

import (
	"net/http"
	"time"

	"paychangu-gateway/internal/domain/ports/adapter"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server relays internal HTTP calls to a PaymentGateway, one gateway call per request.
type Server struct {
	gw       adapter.PaymentGateway
	adminKey string
	timeout  time.Duration
	log      *zerolog.Logger
}

// NewServer constructs the relay. adminKey guards /v1 when non-empty;
// timeout bounds each request including the upstream call.
func NewServer(gw adapter.PaymentGateway, adminKey string, timeout time.Duration, logger *zerolog.Logger) *Server {
	if timeout <= 0 {
		timeout = 35 * time.Second
	}
	return &Server{gw: gw, adminKey: adminKey, timeout: timeout, log: logger}
}

// Routes builds the chi router with the middleware chain applied.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(TraceID(), RequestLog(s.log), Recover(s.log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Mount("/v1", Chain(s.v1(), AdminKey(s.adminKey), Timeout(s.timeout)))
	return r
}

func (s *Server) v1() http.Handler {
	r := chi.NewRouter()
	r.Route("/payments", func(r chi.Router) {
		r.Post("/", s.createPayment)
		r.Get("/{ref}", s.verifyPayment)
	})
	r.Get("/banks", s.listBanks)
	r.Route("/payouts", func(r chi.Router) {
		r.Post("/mobile", s.createMobilePayout)
		r.Post("/bank", s.createBankPayout)
		r.Get("/{ref}", s.verifyPayout)
	})
	return r
}
