package vwstest

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func decodeBody(r *http.Request) (map[string]any, bool) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, false
	}
	return body, true
}

func (s *Server) addTarget(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody(r)
	if !ok {
		writeResult(w, http.StatusBadRequest, "Fail", nil)
		return
	}
	name, ok := body["name"].(string)
	if !ok || name == "" || len(name) > maxNameLength {
		writeResult(w, http.StatusBadRequest, "Fail", nil)
		return
	}
	width, ok := body["width"].(float64)
	if !ok || width < 0 {
		writeResult(w, http.StatusBadRequest, "Fail", nil)
		return
	}
	image, ok := decodeImage(body["image"])
	if !ok {
		writeResult(w, http.StatusUnprocessableEntity, "BadImage", nil)
		return
	}
	if len(image) > maxImageBytes {
		writeResult(w, http.StatusUnprocessableEntity, "ImageTooLarge", nil)
		return
	}
	active := true
	if v, present := body["active_flag"]; present && v != nil {
		b, ok := v.(bool)
		if !ok {
			writeResult(w, http.StatusBadRequest, "Fail", nil)
			return
		}
		active = b
	}
	var meta *string
	if v, present := body["application_metadata"]; present && v != nil {
		str, ok := v.(string)
		if !ok {
			writeResult(w, http.StatusBadRequest, "Fail", nil)
			return
		}
		decoded, err := base64.StdEncoding.DecodeString(str)
		if err != nil {
			writeResult(w, http.StatusBadRequest, "Fail", nil)
			return
		}
		if len(decoded) > maxMetaBytes {
			writeResult(w, http.StatusUnprocessableEntity, "MetadataTooLarge", nil)
			return
		}
		meta = &str
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nameTaken(name, "") {
		writeResult(w, http.StatusForbidden, "TargetNameExist", nil)
		return
	}
	now := s.now().UTC()
	t := &Target{
		ID:             uuid.NewString(),
		Name:           name,
		Width:          width,
		Image:          image,
		Active:         active,
		Metadata:       meta,
		TrackingRating: trackingRating(image),
		UploadDate:     now,
		LastModified:   now,
		finalStatus:    "success",
	}
	s.targets[t.ID] = t
	s.startProcessing(t.ID)
	writeResult(w, http.StatusCreated, "TargetCreated", map[string]any{"target_id": t.ID})
}

func (s *Server) listTargets(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.targets))
	for id := range s.targets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	writeResult(w, http.StatusOK, "Success", map[string]any{"results": ids})
}

// lookup resolves {target_id} or writes UnknownTarget. Callers hold s.mu.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*Target, bool) {
	t, ok := s.targets[chi.URLParam(r, "target_id")]
	if !ok {
		writeResult(w, http.StatusNotFound, "UnknownTarget", nil)
		return nil, false
	}
	return t, true
}

func (s *Server) getTarget(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	status := s.status(t)
	rating := t.TrackingRating
	if status == "processing" {
		rating = -1
	}
	writeResult(w, http.StatusOK, "Success", map[string]any{
		"status": status,
		"target_record": map[string]any{
			"target_id":       t.ID,
			"active_flag":     t.Active,
			"name":            t.Name,
			"width":           t.Width,
			"tracking_rating": rating,
			"reco_rating":     "",
		},
	})
}

func (s *Server) updateTarget(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody(r)
	if !ok {
		writeResult(w, http.StatusBadRequest, "Fail", nil)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	switch s.status(t) {
	case "processing":
		writeResult(w, http.StatusForbidden, "TargetStatusProcessing", nil)
		return
	case "failed":
		writeResult(w, http.StatusForbidden, "TargetStatusNotSuccess", nil)
		return
	}

	updated := *t
	if v, present := body["name"]; present {
		name, ok := v.(string)
		if !ok || name == "" || len(name) > maxNameLength {
			writeResult(w, http.StatusBadRequest, "Fail", nil)
			return
		}
		if s.nameTaken(name, t.ID) {
			writeResult(w, http.StatusForbidden, "TargetNameExist", nil)
			return
		}
		updated.Name = name
	}
	if v, present := body["width"]; present {
		width, ok := v.(float64)
		if !ok || width < 0 {
			writeResult(w, http.StatusBadRequest, "Fail", nil)
			return
		}
		updated.Width = width
	}
	if v, present := body["active_flag"]; present {
		active, ok := v.(bool)
		if !ok {
			writeResult(w, http.StatusBadRequest, "Fail", nil)
			return
		}
		updated.Active = active
	}
	if v, present := body["application_metadata"]; present {
		str, ok := v.(string)
		if !ok {
			writeResult(w, http.StatusBadRequest, "Fail", nil)
			return
		}
		updated.Metadata = &str
	}
	reprocess := false
	if v, present := body["image"]; present {
		image, ok := decodeImage(v)
		if !ok {
			writeResult(w, http.StatusUnprocessableEntity, "BadImage", nil)
			return
		}
		updated.Image = image
		updated.TrackingRating = trackingRating(image)
		reprocess = true
	}
	updated.LastModified = s.now().UTC()
	*t = updated
	if reprocess {
		s.startProcessing(t.ID)
	}
	writeResult(w, http.StatusOK, "Success", nil)
}

func (s *Server) deleteTarget(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if s.status(t) == "processing" {
		writeResult(w, http.StatusForbidden, "TargetStatusProcessing", nil)
		return
	}
	delete(s.targets, t.ID)
	delete(s.recos, t.ID)
	writeResult(w, http.StatusOK, "Success", nil)
}

func (s *Server) databaseSummary(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var active, inactive, failed, processing, recos int
	for _, t := range s.targets {
		switch s.status(t) {
		case "processing":
			processing++
		case "failed":
			failed++
		default:
			if t.Active {
				active++
			} else {
				inactive++
			}
		}
		recos += s.recos[t.ID]
	}
	writeResult(w, http.StatusOK, "Success", map[string]any{
		"name":                 databaseName,
		"active_images":        active,
		"inactive_images":      inactive,
		"failed_images":        failed,
		"processing_images":    processing,
		"reco_threshold":       1000,
		"request_quota":        100000,
		"request_usage":        0,
		"target_quota":         1000,
		"total_recos":          recos,
		"current_month_recos":  recos,
		"previous_month_recos": 0,
	})
}

func (s *Server) targetSummary(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	recos := s.recos[t.ID]
	writeResult(w, http.StatusOK, "Success", map[string]any{
		"status":               s.status(t),
		"database_name":        databaseName,
		"target_name":          t.Name,
		"upload_date":          t.UploadDate.Format("2006-01-02"),
		"active_flag":          t.Active,
		"tracking_rating":      t.TrackingRating,
		"total_recos":          recos,
		"current_month_recos":  recos,
		"previous_month_recos": 0,
	})
}

// duplicates lists other active, processed targets with an identical image.
func (s *Server) duplicates(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if s.status(t) == "processing" {
		writeResult(w, http.StatusForbidden, "TargetStatusProcessing", nil)
		return
	}
	similar := []string{}
	for id, other := range s.targets {
		if id == t.ID || !other.Active || s.status(other) != "success" {
			continue
		}
		if bytes.Equal(other.Image, t.Image) {
			similar = append(similar, id)
		}
	}
	sort.Strings(similar)
	writeResult(w, http.StatusOK, "Success", map[string]any{"similar_targets": similar})
}

var instanceFormats = map[string][]byte{
	"image/png":       []byte("\x89PNG\r\n\x1a\n"),
	"image/svg+xml":   []byte("<svg xmlns=\"http://www.w3.org/2000/svg\">"),
	"application/pdf": []byte("%PDF-1.4\n"),
}

func (s *Server) generateInstance(w http.ResponseWriter, r *http.Request) {
	accept := r.Header.Get("Accept")
	prefix, ok := instanceFormats[accept]
	if !ok {
		writeResult(w, http.StatusBadRequest, "InvalidAcceptHeader", nil)
		return
	}
	body, ok := decodeBody(r)
	if !ok {
		writeResult(w, http.StatusBadRequest, "Fail", nil)
		return
	}
	instanceID, _ := body["instance_id"].(string)
	if instanceID == "" {
		writeResult(w, http.StatusUnprocessableEntity, "InvalidInstanceId", nil)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if s.status(t) != "success" {
		writeResult(w, http.StatusForbidden, "TargetStatusNotSuccess", nil)
		return
	}
	w.Header().Set("Content-Type", accept)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(prefix)
	_, _ = fmt.Fprintf(w, "%s:%s", t.ID, instanceID)
}

func (s *Server) query(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxRequestBytes); err != nil {
		writeResult(w, http.StatusBadRequest, "BadRequest", nil)
		return
	}
	maxResults := 1
	if raw := r.FormValue("max_num_results"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 50 {
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, fmt.Sprintf("Integer out of range (%s) in multipart/form-data request part max_num_results", raw))
			return
		}
		maxResults = n
	}
	include := r.FormValue("include_target_data")
	if include == "" {
		include = "top"
	}
	if include != "top" && include != "none" && include != "all" {
		writeResult(w, http.StatusBadRequest, "BadRequest", nil)
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		writeResult(w, http.StatusBadRequest, "BadImage", nil)
		return
	}
	defer func() { _ = file.Close() }()
	image, err := io.ReadAll(file)
	if err != nil || len(image) == 0 {
		writeResult(w, http.StatusUnprocessableEntity, "BadImage", nil)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var matches []*Target
	for _, t := range s.targets {
		if t.Active && s.status(t) == "success" && bytes.Equal(t.Image, image) {
			matches = append(matches, t)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}

	results := make([]map[string]any, 0, len(matches))
	for i, t := range matches {
		s.recos[t.ID]++
		item := map[string]any{"target_id": t.ID}
		if include == "all" || (include == "top" && i == 0) {
			var meta any
			if t.Metadata != nil {
				meta = *t.Metadata
			}
			item["target_data"] = map[string]any{
				"name":                 t.Name,
				"application_metadata": meta,
				"target_timestamp":     t.LastModified.Unix(),
			}
		}
		results = append(results, item)
	}
	writeResult(w, http.StatusOK, "Success", map[string]any{
		"query_id": uuid.NewString(),
		"results":  results,
	})
}
