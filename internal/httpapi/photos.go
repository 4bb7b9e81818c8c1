package httpapi

import (
	"net/http"
	"time"

	"github.com/nostella/nostella/internal/domain"
	"github.com/nostella/nostella/internal/service"
	"github.com/nostella/nostella/pkg/httpx"
	"github.com/nostella/nostella/pkg/slogx"
)

// maxPhotoBytes caps photo uploads.
const maxPhotoBytes = 50 << 20

// photoResponse is the client-facing photo shape.
type photoResponse struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Caption     string    `json:"caption"`
	Description *string   `json:"description,omitempty"`
	TakenAt     time.Time `json:"takenAt"`
	IsFavorite  bool      `json:"isFavorite"`
	Story       *string   `json:"story,omitempty"`
	HasStory    bool      `json:"hasStory"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toPhotoResponse(p domain.Photo) photoResponse {
	return photoResponse{
		ID:          p.ID,
		URL:         p.URL,
		Caption:     p.Caption,
		Description: p.Description,
		TakenAt:     p.TakenAt,
		IsFavorite:  p.IsFavorite,
		Story:       p.Story,
		HasStory:    p.HasStory,
		CreatedAt:   p.CreatedAt,
	}
}

// PhotoCreateHandler accepts a multipart form: the image under "photo",
// plus optional "caption", "description" and RFC 3339 "takenAt" fields.
type PhotoCreateHandler struct {
	PhotoService *service.PhotoService
}

func (h *PhotoCreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes)
	file, header, err := r.FormFile("photo")
	if err != nil {
		errBadRequest.WriteError(w)
		return
	}
	defer file.Close()

	var takenAt time.Time
	if raw := r.FormValue("takenAt"); raw != "" {
		takenAt, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			(&APIError{
				StatusCode:  http.StatusBadRequest,
				Code:        "validation_error",
				Description: "takenAt must be an RFC 3339 timestamp",
			}).WriteError(w)
			return
		}
	}

	photo, err := h.PhotoService.Upload(ctx, service.UploadParams{
		UserID:      httpx.UserIDFromContext(ctx),
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
		Caption:     r.FormValue("caption"),
		Description: r.FormValue("description"),
		TakenAt:     takenAt,
	})
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toPhotoResponse(photo))
}

type PhotoListHandler struct {
	PhotoService *service.PhotoService
}

func (h *PhotoListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	photos, err := h.PhotoService.List(ctx, httpx.UserIDFromContext(ctx))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	out := make([]photoResponse, 0, len(photos))
	for _, p := range photos {
		out = append(out, toPhotoResponse(p))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"photos": out})
}

type PhotoGetHandler struct {
	PhotoService *service.PhotoService
}

func (h *PhotoGetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	photo, err := h.PhotoService.Get(ctx, httpx.UserIDFromContext(ctx), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toPhotoResponse(photo))
}

type PhotoUpdateHandler struct {
	PhotoService *service.PhotoService
}

func (h *PhotoUpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req struct {
		Caption     *string    `json:"caption"`
		Description *string    `json:"description"`
		TakenAt     *time.Time `json:"takenAt"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	photo, err := h.PhotoService.Update(ctx, httpx.UserIDFromContext(ctx), r.PathValue("id"), domain.PhotoUpdate{
		Caption:     req.Caption,
		Description: req.Description,
		TakenAt:     req.TakenAt,
	})
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toPhotoResponse(photo))
}

type PhotoDeleteHandler struct {
	PhotoService *service.PhotoService
}

func (h *PhotoDeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := h.PhotoService.Delete(ctx, httpx.UserIDFromContext(ctx), r.PathValue("id")); err != nil {
		writeServiceError(w, log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type PhotoFavoriteHandler struct {
	PhotoService *service.PhotoService
}

func (h *PhotoFavoriteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	photo, err := h.PhotoService.ToggleFavorite(ctx, httpx.UserIDFromContext(ctx), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toPhotoResponse(photo))
}

// PhotoViewHandler returns a short-lived signed URL for the raw object.
type PhotoViewHandler struct {
	PhotoService *service.PhotoService
}

func (h *PhotoViewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	url, err := h.PhotoService.ViewURL(ctx, httpx.UserIDFromContext(ctx), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"url": url})
}
