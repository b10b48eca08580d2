package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/nerrad567/gray-logic-tuya/internal/platform"
)

var validate = validator.New()

// selectOptionRequest is the body of POST /selects/{id}/option.
type selectOptionRequest struct {
	Option string `json:"option" validate:"required"`
}

// updateSelectRequest is the body of PATCH /selects/{id}.
type updateSelectRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// categoryResponse describes one category the bridge knows.
type categoryResponse struct {
	Category string                `json:"category"`
	AliasOf  string                `json:"alias_of,omitempty"`
	Selects  []descriptionResponse `json:"selects"`
}

type descriptionResponse struct {
	Key              string                  `json:"key"`
	Name             string                  `json:"name"`
	EntityCategory   platform.EntityCategory `json:"entity_category,omitempty"`
	Icon             string                  `json:"icon,omitempty"`
	TranslationKey   string                  `json:"translation_key,omitempty"`
	EnabledByDefault bool                    `json:"enabled_by_default"`
}

// handleListCategories returns every category with its select templates.
func (s *Server) handleListCategories(w http.ResponseWriter, _ *http.Request) {
	cats := s.categories.Categories()
	resp := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		descs, _ := s.categories.Lookup(c)
		alias, _ := s.categories.AliasOf(c)

		entry := categoryResponse{
			Category: c,
			AliasOf:  alias,
			Selects:  make([]descriptionResponse, len(descs)),
		}
		for i, d := range descs {
			entry.Selects[i] = descriptionResponse{
				Key:              string(d.Key),
				Name:             d.Name,
				EntityCategory:   d.EntityCategory,
				Icon:             d.Icon,
				TranslationKey:   d.TranslationKey,
				EnabledByDefault: d.EnabledByDefault(),
			}
		}
		resp = append(resp, entry)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"categories": resp,
		"count":      len(resp),
	})
}

// handleListSelects returns every registered select.
// Query: device_id filters by device, enabled=true|false by enabled flag.
func (s *Server) handleListSelects(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("device_id")
	enabledFilter := r.URL.Query().Get("enabled")
	if enabledFilter != "" && enabledFilter != "true" && enabledFilter != "false" {
		writeBadRequest(w, "enabled must be true or false")
		return
	}

	all := s.selects.List()
	states := make([]platform.SelectState, 0, len(all))
	for _, st := range all {
		if deviceID != "" && st.DeviceID != deviceID {
			continue
		}
		if enabledFilter != "" && st.Enabled != (enabledFilter == "true") {
			continue
		}
		states = append(states, st)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"selects": states,
		"count":   len(states),
	})
}

// handleGetSelect returns one select.
func (s *Server) handleGetSelect(w http.ResponseWriter, r *http.Request) {
	state, err := s.selects.Snapshot(chi.URLParam(r, "id"))
	if err != nil {
		s.writeSelectError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// handleSelectOption asks the device to change the option. The new value
// arrives later through the state feed; the response is 202 Accepted.
func (s *Server) handleSelectOption(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req selectOptionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.selects.SelectOption(r.Context(), id, req.Option); err != nil {
		s.writeSelectError(w, r, err)
		return
	}

	s.logger.Info("select option requested", "unique_id", id, "option", req.Option)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"unique_id": id,
		"option":    req.Option,
		"status":    "accepted",
	})
}

// handleUpdateSelect enables or disables a select.
func (s *Server) handleUpdateSelect(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateSelectRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.selects.SetEnabled(r.Context(), id, *req.Enabled); err != nil {
		s.writeSelectError(w, r, err)
		return
	}

	state, err := s.selects.Snapshot(id)
	if errors.Is(err, platform.ErrEntityNotFound) {
		// Stored for a select whose device is not connected.
		writeJSON(w, http.StatusOK, map[string]any{
			"unique_id":  id,
			"enabled":    *req.Enabled,
			"registered": false,
		})
		return
	}
	if err != nil {
		s.writeSelectError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// storedSelectResponse is a persisted select with no live entity.
type storedSelectResponse struct {
	UniqueID       string                  `json:"unique_id"`
	DeviceID       string                  `json:"device_id"`
	DeviceCategory string                  `json:"device_category"`
	Key            string                  `json:"key"`
	Name           string                  `json:"name"`
	EntityCategory platform.EntityCategory `json:"entity_category,omitempty"`
	Options        []string                `json:"options"`
	Enabled        bool                    `json:"enabled"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

// handleListUnregistered returns persisted selects whose device has not
// been discovered since startup.
func (s *Server) handleListUnregistered(w http.ResponseWriter, r *http.Request) {
	records, err := s.selects.Unregistered(r.Context())
	if err != nil {
		s.writeSelectError(w, r, err)
		return
	}

	resp := make([]storedSelectResponse, len(records))
	for i, rec := range records {
		resp[i] = storedSelectResponse{
			UniqueID:       rec.UniqueID,
			DeviceID:       rec.DeviceID,
			DeviceCategory: rec.DeviceCategory,
			Key:            rec.Key,
			Name:           rec.Name,
			EntityCategory: rec.EntityCategory,
			Options:        rec.Options,
			Enabled:        rec.Enabled,
			UpdatedAt:      rec.UpdatedAt,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"selects": resp,
		"count":   len(resp),
	})
}

// decodeBody decodes and validates a JSON body, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "request body too large")
			return false
		}
		writeBadRequest(w, "invalid JSON body")
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return false
	}
	return true
}

func (s *Server) writeSelectError(w http.ResponseWriter, r *http.Request, err error) {
	if writePlatformError(w, err) {
		return
	}
	s.logger.Error("select request failed",
		"path", r.URL.Path,
		"request_id", requestID(r),
		"error", err,
	)
	writeInternalError(w, "internal server error")
}
