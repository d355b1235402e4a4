package web

import (
	"net/http"

	"openplay-app/internal/host"
	"openplay-app/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Options struct {
	Host            *host.Host
	Store           store.Store
	Hub             *Hub
	Logger          *zap.Logger
	Gatherer        prometheus.Gatherer
	OperatorPINHash string
	CORSOrigins     []string
}

type Server struct {
	host     *host.Host
	store    store.Store
	hub      *Hub
	log      *zap.Logger
	validate *validator.Validate
	gatherer prometheus.Gatherer
	pinHash  string
	origins  []string
}

func NewServer(opts Options) *Server {
	s := &Server{
		host:     opts.Host,
		store:    opts.Store,
		hub:      opts.Hub,
		log:      opts.Logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		gatherer: opts.Gatherer,
		pinHash:  opts.OperatorPINHash,
		origins:  opts.CORSOrigins,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	return s
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if len(s.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", operatorPINHeader},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	if s.hub != nil {
		r.Get("/ws", s.handleLiveFeed)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/session", s.handleSnapshot)
		r.Get("/queue", s.handleQueue)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/alerts", s.handleAlerts)
		r.Get("/locations", s.handleLocations)
		r.Get("/directory", s.handleDirectory)
		r.Get("/directory/{name}", s.handleDirectoryRecord)
		r.Get("/mute", s.handleMute)

		r.Group(func(r chi.Router) {
			r.Use(s.requireOperator)

			r.Put("/mute", s.handleMuteUpdate)

			r.Post("/players", s.handlePlayerAdd)
			r.Delete("/players/{playerID}", s.handlePlayerRemove)
			r.Put("/players/{playerID}/skill", s.handlePlayerSkill)
			r.Post("/players/{playerID}/check-in", s.handlePlayerCheckIn)
			r.Post("/players/{playerID}/check-out", s.handlePlayerCheckOut)
			r.Put("/players/{playerID}/partner", s.handlePartnerLock)
			r.Delete("/players/{playerID}/partner", s.handlePartnerUnlock)

			r.Put("/session/courts", s.handleCourtsUpdate)
			r.Put("/session/mode", s.handleModeUpdate)
			r.Put("/session/location", s.handleLocationUpdate)
			r.Post("/session/start", s.handleSessionStart)
			r.Post("/session/end", s.handleSessionEnd)
			r.Post("/session/new", s.handleSessionNew)

			r.Post("/courts/fill", s.handleCourtsFill)
			r.Post("/courts/{court}/fill", s.handleCourtFill)

			r.Post("/matches/{matchID}/winner", s.handleWinnerRecord)
			r.Post("/matches/{matchID}/undo", s.handleWinnerUndo)
			r.Delete("/matches/{matchID}/players/{playerID}", s.handleCourtRemove)
			r.Delete("/undo", s.handleUndoClear)
		})
	})

	return r
}
