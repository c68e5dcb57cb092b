package api

import (
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

const maxUploadBytes = 32 << 20 // 32 MiB per request

// RecordResponse is the response body for a content record
type RecordResponse struct {
	ID         int64                `json:"id"`
	Kind       string               `json:"kind"`
	Title      string               `json:"title"`
	Slug       string               `json:"slug"`
	Summary    string               `json:"summary,omitempty"`
	Body       string               `json:"body,omitempty"`
	Tags       []string             `json:"tags"`
	Categories []string             `json:"categories"`
	Image      simplecms.MediaRef   `json:"image"`
	Gallery    []simplecms.MediaRef `json:"gallery"`
	Status     string               `json:"status"`
	Featured   bool                 `json:"featured"`
	ViewCount  int64                `json:"view_count"`
	AuthorID   string               `json:"author_id,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

func newRecordResponse(record *simplecms.Record) RecordResponse {
	resp := RecordResponse{
		ID:         record.ID,
		Kind:       string(record.Kind),
		Title:      record.Title,
		Slug:       record.Slug,
		Summary:    record.Summary,
		Body:       record.Body,
		Tags:       record.Tags,
		Categories: record.Categories,
		Image:      record.Image,
		Gallery:    record.Gallery,
		Status:     record.Status,
		Featured:   record.Featured,
		ViewCount:  record.ViewCount,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}
	if record.AuthorID != uuid.Nil {
		resp.AuthorID = record.AuthorID.String()
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if resp.Categories == nil {
		resp.Categories = []string{}
	}
	if resp.Gallery == nil {
		resp.Gallery = []simplecms.MediaRef{}
	}
	return resp
}

// RecordHandler handles HTTP requests for content records
type RecordHandler struct {
	service simplecms.Service
}

// NewRecordHandler creates a new record handler
func NewRecordHandler(service simplecms.Service) *RecordHandler {
	return &RecordHandler{service: service}
}

// PublicRoutes returns the unauthenticated read routes
func (h *RecordHandler) PublicRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/{kind}", h.ListRecords)
	r.Get("/{kind}/{key}", h.GetRecord)

	return r
}

// AdminRoutes returns the authenticated mutation routes
func (h *RecordHandler) AdminRoutes() chi.Router {
	r := chi.NewRouter()

	r.Post("/{kind}", h.CreateRecord)
	r.Put("/{kind}/{id}", h.UpdateRecord)
	r.Delete("/{kind}/{id}", h.DeleteRecord)

	return r
}

// CreateRecord creates a new record from a multipart form payload
func (h *RecordHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	kind, err := simplecms.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	patch, image, gallery, closeFiles, err := h.parsePayload(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer closeFiles()

	if authorID, ok := authorFromContext(r); ok {
		patch.AuthorID = &authorID
	}

	record, err := h.service.CreateRecord(r.Context(), simplecms.CreateRecordRequest{
		Kind:    kind,
		Patch:   patch,
		Image:   image,
		Gallery: gallery,
	})
	if err != nil {
		slog.Error("failed to create record", "kind", kind, "error", err)
		writeError(w, r, err)
		return
	}

	slog.Info("record created", "kind", kind, "id", record.ID, "slug", record.Slug)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, newRecordResponse(record))
}

// UpdateRecord applies a partial update to an existing record
func (h *RecordHandler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	kind, err := simplecms.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, r, &simplecms.InvalidPayloadError{Field: "id", Reason: "not an integer"})
		return
	}

	patch, image, gallery, closeFiles, err := h.parsePayload(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer closeFiles()

	record, err := h.service.UpdateRecord(r.Context(), simplecms.UpdateRecordRequest{
		Kind:    kind,
		ID:      id,
		Patch:   patch,
		Image:   image,
		Gallery: gallery,
	})
	if err != nil {
		slog.Error("failed to update record", "kind", kind, "id", id, "error", err)
		writeError(w, r, err)
		return
	}

	slog.Info("record updated", "kind", kind, "id", id, "slug", record.Slug)
	render.JSON(w, r, newRecordResponse(record))
}

// DeleteRecord deletes a record by ID
func (h *RecordHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	kind, err := simplecms.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, r, &simplecms.InvalidPayloadError{Field: "id", Reason: "not an integer"})
		return
	}

	if err := h.service.DeleteRecord(r.Context(), kind, id); err != nil {
		slog.Error("failed to delete record", "kind", kind, "id", id, "error", err)
		writeError(w, r, err)
		return
	}

	slog.Info("record deleted", "kind", kind, "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// GetRecord retrieves a record by numeric ID or slug and tracks the view
func (h *RecordHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	kind, err := simplecms.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	key := chi.URLParam(r, "key")

	var record *simplecms.Record
	if id, convErr := strconv.ParseInt(key, 10, 64); convErr == nil {
		record, err = h.service.GetRecord(r.Context(), kind, id)
	} else {
		record, err = h.service.GetRecordBySlug(r.Context(), kind, key)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	if count, viewErr := h.service.TrackView(r.Context(), kind, record.ID); viewErr != nil {
		slog.Warn("failed to track view", "kind", kind, "id", record.ID, "error", viewErr)
	} else {
		record.ViewCount = count
	}

	render.JSON(w, r, newRecordResponse(record))
}

// ListRecords lists records of a kind.
// Query parameters: status, tag, category, featured, limit, offset.
func (h *RecordHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	kind, err := simplecms.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	filters, err := parseListFilters(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	records, err := h.service.ListRecords(r.Context(), kind, filters)
	if err != nil {
		slog.Error("failed to list records", "kind", kind, "error", err)
		writeError(w, r, err)
		return
	}

	resp := make([]RecordResponse, 0, len(records))
	for _, record := range records {
		resp = append(resp, newRecordResponse(record))
	}
	render.JSON(w, r, resp)
}

func parseListFilters(r *http.Request) (simplecms.RecordFilters, error) {
	var filters simplecms.RecordFilters
	q := r.URL.Query()

	if v := q.Get("status"); v != "" {
		filters.Status = &v
	}
	if v := q.Get("tag"); v != "" {
		filters.Tag = &v
	}
	if v := q.Get("category"); v != "" {
		filters.Category = &v
	}
	if v := q.Get("featured"); v != "" {
		featured, err := simplecms.DecodeBool("featured", v)
		if err != nil {
			return filters, err
		}
		filters.Featured = &featured
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return filters, &simplecms.InvalidPayloadError{Field: "limit", Reason: "not a non-negative integer"}
		}
		filters.Limit = &limit
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return filters, &simplecms.InvalidPayloadError{Field: "offset", Reason: "not a non-negative integer"}
		}
		filters.Offset = &offset
	}

	return filters, nil
}

// parsePayload decodes a create/update request body into a sparse patch and
// the uploaded files. A form key that is present, even with an empty value,
// is an explicit overwrite; an absent key leaves the field untouched.
func (h *RecordHandler) parsePayload(r *http.Request) (simplecms.RecordPatch, *simplecms.Upload, []simplecms.Upload, func(), error) {
	var patch simplecms.RecordPatch
	noop := func() {}

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return patch, nil, nil, noop, &simplecms.InvalidPayloadError{Field: "body", Reason: "malformed multipart form"}
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return patch, nil, nil, noop, &simplecms.InvalidPayloadError{Field: "body", Reason: "malformed form"}
		}
	}

	form := r.PostForm
	stringField := func(name string) *string {
		if values, ok := form[name]; ok && len(values) > 0 {
			return &values[0]
		}
		return nil
	}

	patch.Title = stringField("title")
	patch.Summary = stringField("summary")
	patch.Body = stringField("body")
	patch.Status = stringField("status")
	patch.ImageURL = stringField("image_url")

	if raw := stringField("tags"); raw != nil {
		tags, err := simplecms.DecodeStringList("tags", *raw)
		if err != nil {
			return patch, nil, nil, noop, err
		}
		patch.Tags = &tags
	}
	if raw := stringField("categories"); raw != nil {
		categories, err := simplecms.DecodeStringList("categories", *raw)
		if err != nil {
			return patch, nil, nil, noop, err
		}
		patch.Categories = &categories
	}
	if raw := stringField("gallery_urls"); raw != nil {
		urls, err := simplecms.DecodeStringList("gallery_urls", *raw)
		if err != nil {
			return patch, nil, nil, noop, err
		}
		patch.GalleryURLs = &urls
	}
	if raw := stringField("featured"); raw != nil {
		featured, err := simplecms.DecodeBool("featured", *raw)
		if err != nil {
			return patch, nil, nil, noop, err
		}
		patch.Featured = &featured
	}

	var opened []multipart.File
	closeFiles := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	var image *simplecms.Upload
	var gallery []simplecms.Upload
	if r.MultipartForm != nil {
		if headers := r.MultipartForm.File["image"]; len(headers) > 0 {
			file, err := headers[0].Open()
			if err != nil {
				closeFiles()
				return patch, nil, nil, noop, &simplecms.InvalidPayloadError{Field: "image", Reason: "unreadable upload"}
			}
			opened = append(opened, file)
			image = &simplecms.Upload{
				Reader:   file,
				FileName: headers[0].Filename,
				MimeType: headers[0].Header.Get("Content-Type"),
			}
		}
		for _, header := range r.MultipartForm.File["gallery"] {
			file, err := header.Open()
			if err != nil {
				closeFiles()
				return patch, nil, nil, noop, &simplecms.InvalidPayloadError{Field: "gallery", Reason: "unreadable upload"}
			}
			opened = append(opened, file)
			gallery = append(gallery, simplecms.Upload{
				Reader:   file,
				FileName: header.Filename,
				MimeType: header.Header.Get("Content-Type"),
			})
		}
	}

	return patch, image, gallery, closeFiles, nil
}

// authorFromContext extracts the authenticated author id from JWT claims.
func authorFromContext(r *http.Request) (uuid.UUID, bool) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return uuid.Nil, false
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
