package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/postboard/postboard-be/internal/database"
	"github.com/postboard/postboard-be/internal/errs"
	"github.com/postboard/postboard-be/internal/services"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	errTrailingData = errors.New("unexpected data after JSON object")
	errNotAnObject  = errors.New("request body must be a JSON object")
)

// ResourceHandler handles CRUD requests for one resource kind.
type ResourceHandler[T database.Document[T]] struct {
	name    string // display name, e.g. "User"
	service services.ResourceServiceProvider[T]
}

// NewResourceHandler creates a new ResourceHandler. name is used in
// response messages.
func NewResourceHandler[T database.Document[T]](name string, service services.ResourceServiceProvider[T]) *ResourceHandler[T] {
	return &ResourceHandler[T]{name: name, service: service}
}

// GetAll handles the request to list every record. A failed scan returns
// 500 with an empty array.
func (h *ResourceHandler[T]) GetAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		log.Error().Err(err).Str("resource", h.name).Msg("Failed to retrieve records")
		writeJSON(w, http.StatusInternalServerError, []T{})
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Get handles the request to get a single record by its ID.
func (h *ResourceHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, err, id, "get")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Create handles the request to create a new record. Any id in the body is
// discarded; the store assigns one.
func (h *ResourceHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	record, ok := h.decode(w, r)
	if !ok {
		return
	}

	created, err := h.service.Create(r.Context(), record.WithID(primitive.NilObjectID))
	if err != nil {
		h.fail(w, err, "", "create")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update handles the request to replace the mutable fields of a record.
func (h *ResourceHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := database.ParseID(id); err != nil {
		h.fail(w, err, id, "update")
		return
	}
	record, ok := h.decode(w, r)
	if !ok {
		return
	}

	matched, err := h.service.Update(r.Context(), id, record)
	if err == nil && matched == 0 {
		err = database.ErrNotFound
	}
	if err != nil {
		h.fail(w, err, id, "update")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: h.name + " updated"})
}

// Delete handles the request to delete a record.
func (h *ResourceHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleted, err := h.service.Delete(r.Context(), id)
	if err == nil && deleted == 0 {
		err = database.ErrNotFound
	}
	if err != nil {
		h.fail(w, err, id, "delete")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: h.name + " deleted"})
}

// decode reads a single JSON object from the body. Any "id" key is dropped
// before the object reaches the model; the store assigns ids.
func (h *ResourceHandler[T]) decode(w http.ResponseWriter, r *http.Request) (T, bool) {
	var record T
	if err := decodeBody(r.Body, &record); err != nil {
		log.Warn().Err(err).Str("resource", h.name).Msg("Invalid request body")
		writeError(w, errs.DecodeError())
		return record, false
	}
	return record, true
}

func decodeBody(body io.Reader, dst any) error {
	dec := json.NewDecoder(body)

	var fields map[string]json.RawMessage
	if err := dec.Decode(&fields); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	if fields == nil {
		return errNotAnObject
	}
	delete(fields, "id")

	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

func (h *ResourceHandler[T]) fail(w http.ResponseWriter, err error, id, op string) {
	httpErr := errs.FromDatabase(err, h.name)
	event := log.Warn()
	if httpErr.Status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Str("resource", h.name).Str("id", id).Str("op", op).Msg("Request failed")
	writeError(w, httpErr)
}
