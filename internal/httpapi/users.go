package httpapi

import (
	"net/http"

	"github.com/nostella/nostella/internal/service"
	"github.com/nostella/nostella/pkg/httpx"
	"github.com/nostella/nostella/pkg/slogx"
)

// maxAvatarBytes caps avatar uploads.
const maxAvatarBytes = 5 << 20

type ProfileGetHandler struct {
	UserService *service.UserService
}

func (h *ProfileGetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	profile, err := h.UserService.GetProfile(ctx, httpx.UserIDFromContext(ctx))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, profile)
}

type ProfileUpdateHandler struct {
	UserService *service.UserService
}

func (h *ProfileUpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.UserService.UpdateName(ctx, httpx.UserIDFromContext(ctx), req.Name)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, profile)
}

// AvatarHandler accepts a multipart form with the image under "avatar".
type AvatarHandler struct {
	UserService *service.UserService
}

func (h *AvatarHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes)
	file, header, err := r.FormFile("avatar")
	if err != nil {
		errBadRequest.WriteError(w)
		return
	}
	defer file.Close()

	profile, err := h.UserService.UpdateAvatar(ctx, httpx.UserIDFromContext(ctx), header.Header.Get("Content-Type"), file)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, profile)
}
