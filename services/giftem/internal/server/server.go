package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"giftem/internal/ratelimit"
	"giftem/internal/util"
	"giftem/pkg/domain"
	"giftem/services/giftem/internal/app"
)

const maxBodyBytes = 64 << 10

// Config wires required dependencies for the HTTP server.
type Config struct {
	App                        *app.App
	RedisAddr                  string
	RedisPassword              string
	TrustedProxyCIDRs          []string
	MutationRateLimitPerMinute int
}

// Server exposes the giftem JSON API.
type Server struct {
	app            *app.App
	mux            *http.ServeMux
	trustedProxies *util.TrustedProxies
	mutateLimiter  *ratelimit.FixedWindowLimiter
}

// New constructs the server with routes configured. Product mutations are
// rate limited only when a positive limit is configured.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("server: app required")
	}
	trusted, err := util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		return nil, fmt.Errorf("parse trusted proxies: %w", err)
	}
	s := &Server{
		app:            cfg.App,
		mux:            http.NewServeMux(),
		trustedProxies: trusted,
	}
	if cfg.MutationRateLimitPerMinute > 0 {
		s.mutateLimiter, err = ratelimit.NewFixedWindowLimiter(ratelimit.Config{
			RedisAddr:     cfg.RedisAddr,
			RedisPassword: cfg.RedisPassword,
			Prefix:        "giftem:ratelimit:products",
			Limit:         cfg.MutationRateLimitPerMinute,
			Window:        time.Minute,
		})
		if err != nil {
			return nil, fmt.Errorf("init product limiter: %w", err)
		}
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.Chain(s.mux,
		util.WithRequestID,
		util.WithRequestLog,
		util.WithSecurityHeaders,
		util.WithCORS,
	)
}

// Close releases the rate limiter's Redis pool, if any.
func (s *Server) Close() error {
	if s.mutateLimiter == nil {
		return nil
	}
	return s.mutateLimiter.Close()
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	s.mux.HandleFunc("/api/products", s.handleProducts)
	s.mux.HandleFunc("/api/products/", s.handleProductByID)

	s.mux.HandleFunc("/api/feed", s.handleFeed)
	s.mux.HandleFunc("/api/posts/", s.handlePostByID)

	s.mux.HandleFunc("/api/users", s.handleUsers)
	s.mux.HandleFunc("/api/users/", s.handleUserByID)
	s.mux.HandleFunc("/api/me", s.handleMe)

	s.mux.HandleFunc("/api/conversations", s.handleConversations)
	s.mux.HandleFunc("/api/conversations/", s.handleConversationByID)
	s.mux.HandleFunc("/api/badge", s.handleBadge)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// /api/products
func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListProducts(w, r)
	case http.MethodPost:
		if !s.allowMutation(w, r) {
			return
		}
		s.handleAddProduct(w, r)
	case http.MethodDelete:
		if !s.allowMutation(w, r) {
			return
		}
		s.app.ClearProducts()
		writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	products := s.app.SearchProducts(query.Get("q"))
	if raw := strings.TrimSpace(query.Get("category")); raw != "" {
		category, ok := domain.ParseCategory(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown category")
			return
		}
		filtered := make([]domain.Product, 0, len(products))
		for _, p := range products {
			if p.Category == category {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": products,
		"count": len(products),
	})
}

func (s *Server) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	var req addProductRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !req.Price.set {
		writeError(w, http.StatusBadRequest, "price required")
		return
	}
	in := app.NewProduct{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price.value,
		Category:    req.Category,
	}
	if req.OriginalPrice.set {
		v := req.OriginalPrice.value
		in.OriginalPrice = &v
	}
	product, err := s.app.AddCustomProduct(in)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// /api/products/{id} or /api/products/reset
func (s *Server) handleProductByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/products/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	if id == "reset" {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		if !s.allowMutation(w, r) {
			return
		}
		s.app.ResetProducts()
		writeJSON(w, http.StatusOK, map[string]any{"items": s.app.Products()})
		return
	}

	switch r.Method {
	case http.MethodGet:
		product, err := s.app.Product(id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, product)
	case http.MethodDelete:
		if !s.allowMutation(w, r) {
			return
		}
		if err := s.app.RemoveProduct(id); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

// /api/feed
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	items := s.app.Feed()
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"count": len(items),
	})
}

// /api/posts/{id} or /api/posts/{id}/like
func (s *Server) handlePostByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/posts/")
	parts := strings.SplitN(path, "/", 2)
	id := parts[0]
	if id == "" {
		http.NotFound(w, r)
		return
	}
	if len(parts) == 2 {
		if parts[1] != "like" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		post, err := s.app.ToggleLike(id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, post)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	item, err := s.app.Post(id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// /api/users
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	users := s.app.Users()
	writeJSON(w, http.StatusOK, map[string]any{
		"items": users,
		"count": len(users),
	})
}

// /api/users/{id} or /api/users/{id}/posts
func (s *Server) handleUserByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/users/")
	parts := strings.SplitN(path, "/", 2)
	id := parts[0]
	if id == "" {
		http.NotFound(w, r)
		return
	}
	if len(parts) == 2 {
		if parts[1] != "posts" {
			http.NotFound(w, r)
			return
		}
		items, err := s.app.PostsForUser(id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"items": items,
			"count": len(items),
		})
		return
	}
	user, err := s.app.User(id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// /api/me
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		user, err := s.app.CurrentUser()
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	case http.MethodPut:
		var req userRefRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.UserID) == "" {
			writeError(w, http.StatusBadRequest, "userId required")
			return
		}
		user, err := s.app.SetCurrentUser(strings.TrimSpace(req.UserID))
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	default:
		methodNotAllowed(w)
	}
}

// /api/conversations
func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		convs, err := s.app.Conversations()
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"items": convs,
			"count": len(convs),
		})
	case http.MethodPost:
		var req userRefRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.UserID) == "" {
			writeError(w, http.StatusBadRequest, "userId required")
			return
		}
		conv, err := s.app.StartConversation(strings.TrimSpace(req.UserID))
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, conv)
	default:
		methodNotAllowed(w)
	}
}

// /api/conversations/{id}, /api/conversations/{id}/messages or
// /api/conversations/{id}/read
func (s *Server) handleConversationByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/conversations/")
	parts := strings.SplitN(path, "/", 2)
	id := parts[0]
	if id == "" {
		http.NotFound(w, r)
		return
	}
	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		conv, err := s.app.Conversation(id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, conv)
		return
	}

	switch parts[1] {
	case "messages":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		var req sendMessageRequest
		if !decodeBody(w, r, &req) {
			return
		}
		msg, err := s.app.SendMessage(id, req.Body)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, msg)
	case "read":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		n, err := s.app.MarkRead(id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"marked": n, "badge": s.app.BadgeCount()})
	default:
		http.NotFound(w, r)
	}
}

// /api/badge
func (s *Server) handleBadge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": s.app.BadgeCount()})
}

func (s *Server) allowMutation(w http.ResponseWriter, r *http.Request) bool {
	if s.mutateLimiter == nil {
		return true
	}
	ip := util.ClientIP(r, s.trustedProxies)
	decision, err := s.mutateLimiter.Allow(r.Context(), ip)
	if err != nil {
		util.LoggerFromContext(r.Context()).Warn("rate limiter unavailable", "ip", ip, "err", err)
	}
	if decision.Allowed {
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		return true
	}
	retry := int(decision.RetryAfter.Round(time.Second) / time.Second)
	if retry < 1 {
		retry = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retry))
	writeError(w, http.StatusTooManyRequests, "too many product changes, slow down")
	return false
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidProduct),
		errors.Is(err, app.ErrSelfConversation),
		errors.Is(err, app.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrNotParticipant):
		writeError(w, http.StatusForbidden, "not a participant")
	case errors.Is(err, app.ErrProductNotFound),
		errors.Is(err, app.ErrPostNotFound),
		errors.Is(err, app.ErrUserNotFound),
		errors.Is(err, app.ErrUnknownUser),
		errors.Is(err, app.ErrConversationNotFound),
		errors.Is(err, app.ErrNoViewer):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
