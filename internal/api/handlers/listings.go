package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/roamr-backend/internal/api/httpx"
	"github.com/baharkarakas/roamr-backend/internal/middleware"
	"github.com/baharkarakas/roamr-backend/internal/models"
	"github.com/baharkarakas/roamr-backend/internal/services"
)

// Uploader stores an image file and returns the pair the listing keeps.
// Remove takes back an upload whose request failed.
type Uploader interface {
	Upload(ctx context.Context, name string, r io.Reader, size int64) (models.Image, error)
	Remove(ctx context.Context, img models.Image) error
}

type ListingHandler struct {
	Listings       *services.ListingService
	Query          *services.QueryService
	Uploader       Uploader // nil disables multipart image upload
	MaxUploadBytes int64
}

const (
	maxJSONBytes       = 1 << 20
	defaultUploadBytes = 5 << 20
	removeTimeout      = 5 * time.Second
)

type listingEnvelope[T any] struct {
	Listing *T            `json:"listing"`
	Image   *models.Image `json:"image,omitempty"`
}

type listingsResp struct {
	Listings []models.Listing `json:"listings"`
	Category string           `json:"category,omitempty"`
	Query    string           `json:"q,omitempty"`
	Message  string           `json:"message,omitempty"`
}

// List serves both the full index and the ?category= filter.
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		out []models.Listing
		err error
	)
	category := r.URL.Query().Get("category")
	_, filtered := r.URL.Query()["category"]
	if filtered {
		out, err = h.Query.FindByCategory(r.Context(), category)
	} else {
		out, err = h.Query.FindAll(r.Context())
	}
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	resp := listingsResp{Listings: out}
	if filtered {
		resp.Category = category
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *ListingHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	out, err := h.Query.Search(r.Context(), q)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	resp := listingsResp{Listings: out, Query: strings.TrimSpace(q)}
	if len(out) == 0 {
		resp.Message = `No listings found for "` + resp.Query + `"`
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *ListingHandler) Show(w http.ResponseWriter, r *http.Request) {
	d, err := h.Listings.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"listing": d})
}

func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var env listingEnvelope[services.ListingInput]
	img, uploaded, err := decodeListing(h, w, r, &env)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	if env.Listing == nil {
		h.discard(r, img, uploaded)
		httpx.WriteDomainError(w, models.NewValidationError("listing", "listing", "send valid data for listing"))
		return
	}
	l, err := h.Listings.Create(r.Context(), middleware.PrincipalFrom(r.Context()), *env.Listing, img)
	if err != nil {
		h.discard(r, img, uploaded)
		httpx.WriteDomainError(w, err)
		return
	}
	w.Header().Set("Location", "/api/v1/listings/"+l.ID)
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"listing": l, "message": "New listing created"})
}

func (h *ListingHandler) Edit(w http.ResponseWriter, r *http.Request) {
	v, err := h.Listings.Edit(r.Context(), middleware.PrincipalFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, v)
}

func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var env listingEnvelope[models.ListingPatch]
	img, uploaded, err := decodeListing(h, w, r, &env)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	l, err := h.Listings.Update(r.Context(), middleware.PrincipalFrom(r.Context()), chi.URLParam(r, "id"), env.Listing, img)
	if err != nil {
		h.discard(r, img, uploaded)
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"listing": l, "message": "Listing updated"})
}

func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	l, err := h.Listings.Delete(r.Context(), middleware.PrincipalFrom(r.Context()), chi.URLParam(r, "id"))
	var ce *models.CascadeError
	if errors.As(err, &ce) {
		httpx.WriteCascadeError(w, ce, l)
		return
	}
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"listing": l, "message": "Listing deleted"})
}

// decodeListing fills env from a JSON or multipart body and returns the
// image to attach, if any. An uploaded file takes precedence over a JSON
// image pair; uploaded reports whether img was stored by this request.
func decodeListing[T any](h *ListingHandler, w http.ResponseWriter, r *http.Request, env *listingEnvelope[T]) (img *models.Image, uploaded bool, err error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct != "multipart/form-data" {
		if err := httpx.DecodeJSON(http.MaxBytesReader(w, r.Body, maxJSONBytes), env); err != nil {
			return nil, false, err
		}
		return env.Image, false, nil
	}

	limit := h.MaxUploadBytes
	if limit <= 0 {
		limit = defaultUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+maxJSONBytes)
	if err := r.ParseMultipartForm(limit); err != nil {
		return nil, false, httpx.BadRequest(err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	if raw := r.FormValue("listing"); raw != "" {
		var v T
		if err := httpx.DecodeJSON(strings.NewReader(raw), &v); err != nil {
			return nil, false, err
		}
		env.Listing = &v
	}

	file, hdr, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, httpx.BadRequest(err)
	}
	defer file.Close()

	if h.Uploader == nil {
		return nil, false, models.NewValidationError("listing", "image", "image uploads are not configured")
	}
	if hdr.Size > limit {
		return nil, false, models.NewValidationError("listing", "image", "file is too large")
	}
	stored, err := h.Uploader.Upload(r.Context(), hdr.Filename, file, hdr.Size)
	if err != nil {
		return nil, false, err
	}
	return &stored, true, nil
}

// discard removes an image this request uploaded but never attached. The
// request may already be cancelled, so removal runs detached from it.
func (h *ListingHandler) discard(r *http.Request, img *models.Image, uploaded bool) {
	if !uploaded || img == nil || h.Uploader == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), removeTimeout)
	defer cancel()
	if err := h.Uploader.Remove(ctx, *img); err != nil {
		slog.Warn("orphaned image not removed",
			"filename", img.Filename, "request_id", middleware.RequestIDFrom(r.Context()), "err", err)
	}
}
