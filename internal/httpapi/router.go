package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/nostella/nostella/internal/service"
	"github.com/nostella/nostella/internal/store"
	"github.com/nostella/nostella/pkg/httpx"
	"github.com/nostella/nostella/pkg/jwtx"
	"github.com/nostella/nostella/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	AuthService  *service.AuthService
	UserService  *service.UserService
	PhotoService *service.PhotoService
	StoryService *service.StoryService
}

func NewRouter(verifier jwtx.Verifier, buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerPhotos()
	r.registerStories()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// Public endpoints, strict per-IP limits to slow brute force and
	// email-bombing via resend.
	public := func(h http.Handler) http.Handler {
		return httpx.Chain(h, httpx.RateLimitByIP(httpx.StrictLimit))
	}

	r.Mux.Handle("POST /v1/auth/register", public(&RegisterHandler{AuthService: r.AuthService}))
	r.Mux.Handle("POST /v1/auth/verify", public(&VerifyHandler{AuthService: r.AuthService}))
	r.Mux.Handle("POST /v1/auth/resend", public(&ResendHandler{AuthService: r.AuthService}))
	r.Mux.Handle("POST /v1/auth/login", public(&LoginHandler{AuthService: r.AuthService}))
}

func (r *Router) registerUsers() {
	read := func(h http.Handler) http.Handler {
		return httpx.Chain(h,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		)
	}
	write := func(h http.Handler) http.Handler {
		return httpx.Chain(h,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("GET /v1/users/profile", read(&ProfileGetHandler{UserService: r.UserService}))
	r.Mux.Handle("PATCH /v1/users/profile", write(&ProfileUpdateHandler{UserService: r.UserService}))
	r.Mux.Handle("POST /v1/users/avatar", write(&AvatarHandler{UserService: r.UserService}))
}

func (r *Router) registerPhotos() {
	read := func(h http.Handler) http.Handler {
		return httpx.Chain(h,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		)
	}
	write := func(h http.Handler) http.Handler {
		return httpx.Chain(h,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("POST /v1/photos", write(&PhotoCreateHandler{PhotoService: r.PhotoService}))
	r.Mux.Handle("GET /v1/photos", read(&PhotoListHandler{PhotoService: r.PhotoService}))
	r.Mux.Handle("GET /v1/photos/{id}", read(&PhotoGetHandler{PhotoService: r.PhotoService}))
	r.Mux.Handle("PATCH /v1/photos/{id}", write(&PhotoUpdateHandler{PhotoService: r.PhotoService}))
	r.Mux.Handle("DELETE /v1/photos/{id}", write(&PhotoDeleteHandler{PhotoService: r.PhotoService}))
	r.Mux.Handle("POST /v1/photos/{id}/favorite", write(&PhotoFavoriteHandler{PhotoService: r.PhotoService}))
	r.Mux.Handle("GET /v1/photos/{id}/view", read(&PhotoViewHandler{PhotoService: r.PhotoService}))
}

func (r *Router) registerStories() {
	// Story generation calls out to a paid model; keep the limit strict
	// even for legitimate VIPs.
	r.Mux.Handle("POST /v1/ai/generate/{photoId}",
		httpx.Chain(&StoryGenerateHandler{StoryService: r.StoryService},
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
