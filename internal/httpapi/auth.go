package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/nostella/nostella/internal/domain"
	"github.com/nostella/nostella/internal/service"
	"github.com/nostella/nostella/pkg/httpx"
	"github.com/nostella/nostella/pkg/slogx"
)

// maxJSONBody caps request bodies on the JSON endpoints.
const maxJSONBody = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		errBadRequest.WriteError(w)
		return false
	}
	return true
}

// sessionResponse is the shared shape for verify and login.
type sessionResponse struct {
	Message string         `json:"message"`
	Token   string         `json:"token"`
	User    domain.Summary `json:"user"`
}

type RegisterHandler struct {
	AuthService *service.AuthService
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.AuthService.Register(ctx, service.RegisterParams{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, res)
}

type VerifyHandler struct {
	AuthService *service.AuthService
}

func (h *VerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.AuthService.VerifyOTP(ctx, req.Email, req.Code)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, sessionResponse{
		Message: "Email verified successfully",
		Token:   sess.Token,
		User:    sess.User,
	})
}

type ResendHandler struct {
	AuthService *service.AuthService
}

func (h *ResendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.AuthService.ResendOTP(ctx, req.Email); err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Verification code sent. Please check your email.",
	})
}

type LoginHandler struct {
	AuthService *service.AuthService
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, sessionResponse{
		Message: "Login successful",
		Token:   sess.Token,
		User:    sess.User,
	})
}
