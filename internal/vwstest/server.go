package vwstest

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"

	"github.com/five82/vws/vws/auth"
)

const (
	maxNameLength   = 64
	maxImageBytes   = 2 << 20
	maxMetaBytes    = 1 << 20
	maxRequestBytes = 4 << 20
	maxClockSkew    = 5 * time.Minute
	databaseName    = "vwstest"
)

// Target is the fake's view of one stored target.
type Target struct {
	ID             string
	Name           string
	Width          float64
	Image          []byte
	Active         bool
	Metadata       *string // base64, as sent
	TrackingRating int
	UploadDate     time.Time
	LastModified   time.Time
	finalStatus    string
}

// Server is a running fake. Its zero value is not usable; call New.
type Server struct {
	*httptest.Server

	ServerCreds auth.Credentials
	ClientCreds auth.Credentials

	processingTime time.Duration
	now            func() time.Time

	mu         sync.RWMutex
	targets    map[string]*Target
	processing *ttlcache.Cache[string, struct{}]
	recos      map[string]int
}

// Option customizes a Server.
type Option func(*Server)

// WithProcessingTime sets how long targets stay in processing after an add
// or an image update. Defaults to zero.
func WithProcessingTime(d time.Duration) Option {
	return func(s *Server) { s.processingTime = d }
}

// WithClock sets the server clock used for the Date skew check.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New starts a fake and registers its shutdown with t.Cleanup.
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()
	s := &Server{
		ServerCreds: auth.Credentials{AccessKey: "server-access", SecretKey: "server-secret"},
		ClientCreds: auth.Credentials{AccessKey: "client-access", SecretKey: "client-secret"},
		now:         time.Now,
		targets:     make(map[string]*Target),
		recos:       make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.processing = ttlcache.New[string, struct{}](
		ttlcache.WithDisableTouchOnHit[string, struct{}](),
	)
	go s.processing.Start()

	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(func() {
		s.Server.Close()
		s.processing.Stop()
	})
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(s.signed(func() auth.Credentials { return s.ServerCreds }))
		r.Post("/targets", s.addTarget)
		r.Get("/targets", s.listTargets)
		r.Get("/targets/{target_id}", s.getTarget)
		r.Put("/targets/{target_id}", s.updateTarget)
		r.Delete("/targets/{target_id}", s.deleteTarget)
		r.Post("/targets/{target_id}/instances", s.generateInstance)
		r.Get("/summary", s.databaseSummary)
		r.Get("/summary/{target_id}", s.targetSummary)
		r.Get("/duplicates/{target_id}", s.duplicates)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.signed(func() auth.Credentials { return s.ClientCreds }))
		r.Post("/v1/query", s.query)
	})

	return r
}

// signed verifies the Date and Authorization headers against creds.
func (s *Server) signed(creds func() auth.Credentials) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxRequestBytes {
				http.Error(w, "request entity too large", http.StatusRequestEntityTooLarge)
				return
			}
			body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes+1))
			if err != nil {
				writeResult(w, http.StatusBadRequest, "Fail", nil)
				return
			}
			if len(body) > maxRequestBytes {
				http.Error(w, "request entity too large", http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			date := r.Header.Get("Date")
			sent, err := http.ParseTime(date)
			if err != nil {
				writeResult(w, http.StatusBadRequest, "Fail", nil)
				return
			}
			if skew := s.now().Sub(sent); skew > maxClockSkew || skew < -maxClockSkew {
				writeResult(w, http.StatusForbidden, "RequestTimeTooSkewed", nil)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType != "" {
				if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
					contentType = mediaType
				}
			}
			canonical := auth.Canonical{
				Method:      r.Method,
				ContentMD5:  auth.ContentMD5(body),
				ContentType: contentType,
				Date:        date,
				Path:        r.URL.Path,
			}
			if !auth.Verify(creds(), canonical, r.Header.Get("Authorization")) {
				writeResult(w, http.StatusUnauthorized, "AuthenticationFailure", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeResult(w http.ResponseWriter, status int, code string, fields map[string]any) {
	payload := map[string]any{
		"result_code":    code,
		"transaction_id": uuid.NewString(),
	}
	for k, v := range fields {
		payload[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Target returns a copy of the stored target.
func (s *Server) Target(id string) (Target, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.targets[id]
	if !ok {
		return Target{}, false
	}
	return *t, true
}

// SetFinalStatus sets the status a target reports once processing ends:
// "success" (the default) or "failed".
func (s *Server) SetFinalStatus(id, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.targets[id]; ok {
		t.finalStatus = status
	}
}

// status must be called with s.mu held.
func (s *Server) status(t *Target) string {
	if s.processing.Get(t.ID) != nil {
		return "processing"
	}
	return t.finalStatus
}

func (s *Server) startProcessing(id string) {
	if s.processingTime <= 0 {
		return
	}
	s.processing.Set(id, struct{}{}, s.processingTime)
}

func (s *Server) nameTaken(name, except string) bool {
	for id, t := range s.targets {
		if id != except && t.Name == name {
			return true
		}
	}
	return false
}

func decodeImage(raw any) ([]byte, bool) {
	str, ok := raw.(string)
	if !ok {
		return nil, false
	}
	data, err := base64.StdEncoding.DecodeString(str)
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

// trackingRating derives a stable 0..5 rating from the image bytes.
func trackingRating(image []byte) int {
	sum := 0
	for _, b := range image {
		sum += int(b)
	}
	return sum % 6
}
