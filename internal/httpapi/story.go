package httpapi

import (
	"net/http"

	"github.com/nostella/nostella/internal/service"
	"github.com/nostella/nostella/pkg/httpx"
	"github.com/nostella/nostella/pkg/slogx"
)

type StoryGenerateHandler struct {
	StoryService *service.StoryService
}

func (h *StoryGenerateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	photo, err := h.StoryService.Generate(ctx, httpx.UserIDFromContext(ctx), r.PathValue("photoId"))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toPhotoResponse(photo))
}
