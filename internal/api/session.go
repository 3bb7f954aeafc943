package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/pickuppal/pickuppal/internal/app/spending"
	"github.com/pickuppal/pickuppal/internal/domain"
)

// ─── Session API ────────────────────────────────────────────────────────────
// REST endpoints for the app screens. Every call goes through the Engine,
// which serializes writes for the user.
//
// GET  /api/user                — profile + progress
// PUT  /api/user/name           — rename
// GET  /api/activities          — history, newest first
// POST /api/activities/pickup   — log a pickup
// POST /api/activities/delivery — log a delivery
// GET  /api/rankings            — local/friends/weekly (?type= for one board)
// POST /api/character/allocate  — spend stat points
// POST /api/shop/coupon         — lucky draw
// POST /api/shop/roulette       — roulette spin
// POST /api/shop/checkout       — pay with points
// POST /api/friends             — add friend by nickname
// POST /api/steps               — convert pedometer steps
// GET  /api/ledger              — point journal (?limit=)

const msgNotEnoughPoints = "포인트가 부족합니다."

// userResponse is the profile plus derived progress.
type userResponse struct {
	domain.UserProfile
	ProgressPct float64 `json:"progress_pct"`
}

// GET /api/user
func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	p, err := s.engine.Profile(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{UserProfile: p, ProgressPct: p.ProgressPct()})
}

type renameRequest struct {
	Name string `json:"name"`
}

// PUT /api/user/name
func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := s.engine.Rename(r.Context(), req.Name)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{UserProfile: p, ProgressPct: p.ProgressPct()})
}

// ─── Activities ─────────────────────────────────────────────────────────────

// GET /api/activities
func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	acts, err := s.engine.Activities(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"activities": acts,
		"count":      len(acts),
	})
}

type pickupRequest struct {
	RestaurantName string  `json:"restaurant_name"`
	DistanceKm     float64 `json:"distance_km"`
	Reusable       bool    `json:"use_reusable_container"`
}

// POST /api/activities/pickup
func (s *Server) handlePickup(w http.ResponseWriter, r *http.Request) {
	var req pickupRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := s.engine.LogPickup(r.Context(), req.RestaurantName, req.DistanceKm, req.Reusable)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

type deliveryRequest struct {
	RestaurantName string `json:"restaurant_name"`
	OrderValue     int    `json:"order_value"`
}

// POST /api/activities/delivery
func (s *Server) handleDelivery(w http.ResponseWriter, r *http.Request) {
	var req deliveryRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := s.engine.LogDelivery(r.Context(), req.RestaurantName, req.OrderValue)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// ─── Rankings ───────────────────────────────────────────────────────────────

// GET /api/rankings
func (s *Server) handleRankings(w http.ResponseWriter, r *http.Request) {
	rankings, err := s.engine.Rankings(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}

	typ := r.URL.Query().Get("type")
	if typ == "" {
		writeJSON(w, http.StatusOK, rankings)
		return
	}
	board := rankings.Board(domain.LeaderboardType(typ))
	if board == nil {
		writeError(w, http.StatusBadRequest, "unknown leaderboard type: "+typ)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"type":    typ,
		"entries": board,
	})
}

// ─── Character ──────────────────────────────────────────────────────────────

type allocateRequest struct {
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
}

// POST /api/character/allocate
func (s *Server) handleAllocate(w http.ResponseWriter, r *http.Request) {
	var req allocateRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := s.engine.AllocateStats(r.Context(), req.Attack, req.Defense)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ─── Shop ───────────────────────────────────────────────────────────────────

type costRequest struct {
	Cost *int `json:"cost,omitempty"`
}

func (c costRequest) or(def int) int {
	if c.Cost == nil {
		return def
	}
	return *c.Cost
}

// POST /api/shop/coupon
func (s *Server) handleCoupon(w http.ResponseWriter, r *http.Request) {
	var req costRequest
	if !decodeOptional(w, r, &req) {
		return
	}
	cost := req.or(spending.DrawCost)
	if cost < 0 {
		writeError(w, http.StatusBadRequest, "cost must not be negative")
		return
	}
	coupon, err := s.engine.DrawCoupon(r.Context(), cost)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if coupon == nil {
		writeError(w, http.StatusConflict, msgNotEnoughPoints)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"coupon":  coupon,
		"message": coupon.Description,
	})
}

// POST /api/shop/roulette
func (s *Server) handleRoulette(w http.ResponseWriter, r *http.Request) {
	var req costRequest
	if !decodeOptional(w, r, &req) {
		return
	}
	cost := req.or(spending.RouletteCost)
	if cost < 0 {
		writeError(w, http.StatusBadRequest, "cost must not be negative")
		return
	}
	spin, err := s.engine.SpinRoulette(r.Context(), cost)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if !spin.OK {
		writeError(w, http.StatusConflict, msgNotEnoughPoints)
		return
	}
	writeJSON(w, http.StatusOK, spin.SpinResult)
}

type checkoutRequest struct {
	Subtotal int `json:"subtotal"`
	Points   int `json:"points"`
}

// POST /api/shop/checkout
func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !decode(w, r, &req) {
		return
	}
	q, err := s.engine.Checkout(r.Context(), req.Subtotal, req.Points)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// ─── Social & Bonus ─────────────────────────────────────────────────────────

type friendRequest struct {
	Nickname string `json:"nickname"`
}

// POST /api/friends
func (s *Server) handleAddFriend(w http.ResponseWriter, r *http.Request) {
	var req friendRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := s.engine.AddFriend(r.Context(), req.Nickname)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type stepsRequest struct {
	Steps int `json:"steps"`
}

// POST /api/steps
func (s *Server) handleSteps(w http.ResponseWriter, r *http.Request) {
	var req stepsRequest
	if !decode(w, r, &req) {
		return
	}
	points, err := s.engine.RewardSteps(r.Context(), req.Steps)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"steps":  req.Steps,
		"points": points,
	})
}

// GET /api/ledger
func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	rows, err := s.engine.Journal(r.Context(), limit)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": rows,
		"count":   len(rows),
	})
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// decode reads a JSON body into v, writing a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// decodeOptional is decode for endpoints whose body may be empty.
func decodeOptional(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.ContentLength == 0 {
		return true
	}
	return decode(w, r, v)
}

// writeEngineError maps engine errors onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInsufficientPoints):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrQueueClosed):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeError(w, http.StatusGatewayTimeout, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
