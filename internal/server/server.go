// Package server exposes the storefront HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ikirezi/internal/app"
	"ikirezi/internal/ratelimit"
	"ikirezi/internal/util"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App                    *app.App
	RedisAddr              string
	RedisPassword          string
	CartRateLimitPerMinute int
	TrustForwarded         bool
}

// Server exposes HTTP endpoints for the storefront.
type Server struct {
	app            *app.App
	mux            *http.ServeMux
	cartLimiter    *ratelimit.FixedWindowLimiter
	trustForwarded bool
}

// New constructs the server with routes configured. A zero rate limit
// disables cart rate limiting.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("app required")
	}
	var limiter *ratelimit.FixedWindowLimiter
	if cfg.CartRateLimitPerMinute > 0 {
		var err error
		limiter, err = ratelimit.New(ratelimit.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			Prefix:   "ikirezi:storefront:ratelimit:cart",
			Limit:    cfg.CartRateLimitPerMinute,
			Window:   time.Minute,
		})
		if err != nil {
			return nil, fmt.Errorf("init cart limiter: %w", err)
		}
	}
	s := &Server{
		app:            cfg.App,
		mux:            http.NewServeMux(),
		cartLimiter:    limiter,
		trustForwarded: cfg.TrustForwarded,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler with middleware applied.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog(util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// catalog
	s.mux.HandleFunc("/api/books", s.handleBooks)
	s.mux.HandleFunc("/api/books/", s.handleBookByID)

	// cart
	s.mux.HandleFunc("/api/cart", s.handleCart)
	s.mux.HandleFunc("/api/cart/total", s.handleCartTotal)
	s.mux.HandleFunc("/api/cart/items", s.handleCartItems)
	s.mux.HandleFunc("/api/cart/items/", s.handleCartItemByID)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	books, err := s.app.ListBooks()
	if err != nil {
		util.LoggerFromContext(r.Context()).Error("list books failed", "err", err)
		writeError(w, http.StatusInternalServerError, "could not list books")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"books": books})
}

func (s *Server) handleBookByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/books/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	view, err := s.app.GetBook(id)
	if errors.Is(err, app.ErrBookNotFound) {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	if err != nil {
		util.LoggerFromContext(r.Context()).Error("get book failed", "err", err, "book_id", id)
		writeError(w, http.StatusInternalServerError, "could not load book")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleCart(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.app.Cart())
	case http.MethodDelete:
		if !s.allowCartRate(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, s.app.ClearCart())
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleCartTotal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, s.app.CartTotal())
}

type addItemRequest struct {
	BookID   string `json:"bookId"`
	Quantity int    `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (s *Server) handleCartItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowCartRate(w, r) {
		return
	}
	var req addItemRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.BookID) == "" {
		writeError(w, http.StatusBadRequest, "bookId required")
		return
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}
	state, err := s.app.AddToCart(req.BookID, req.Quantity)
	if errors.Is(err, app.ErrBookNotFound) {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	if err != nil {
		util.LoggerFromContext(r.Context()).Error("add to cart failed", "err", err, "book_id", req.BookID)
		writeError(w, http.StatusInternalServerError, "could not add to cart")
		return
	}
	writeJSON(w, http.StatusCreated, state)
}

func (s *Server) handleCartItemByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/cart/items/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "cart item not found")
		return
	}
	switch r.Method {
	case http.MethodPut:
		if !s.allowCartRate(w, r) {
			return
		}
		var req updateItemRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		// quantity < 1 is a silent no-op: current state comes back unchanged.
		writeJSON(w, http.StatusOK, s.app.UpdateQuantity(id, req.Quantity))
	case http.MethodDelete:
		if !s.allowCartRate(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, s.app.RemoveFromCart(id))
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) allowCartRate(w http.ResponseWriter, r *http.Request) bool {
	if s.cartLimiter == nil {
		return true
	}
	key := util.ClientIP(r, s.trustForwarded)
	if s.cartLimiter.Allow(key) {
		return true
	}
	writeError(w, http.StatusTooManyRequests, "too many cart requests")
	return false
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
