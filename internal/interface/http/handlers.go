package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dailygames/games-hub/config"
	"github.com/dailygames/games-hub/internal/application/command"
	"github.com/dailygames/games-hub/internal/application/query"
	"github.com/dailygames/games-hub/internal/domain/shared"
	"github.com/dailygames/games-hub/pkg/logger"
)

// userIDHeader carries the acting user on group operations.
const userIDHeader = "X-User-ID"

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"name":    "Daily Games Hub API",
		"version": s.config.Version,
		"endpoints": map[string]string{
			"health":      "/health",
			"games":       "/api/v1/games",
			"scores":      "/api/v1/scores",
			"feed":        "/api/v1/scores/today",
			"leaderboard": "/api/v1/leaderboard/{game}",
			"profile":     "/api/v1/users/{id}/profile",
			"groups":      "/api/v1/groups",
		},
	})
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.deps.HealthChecker.Check(r.Context())
	if !status.Healthy {
		writeJSON(w, r, http.StatusServiceUnavailable, status)
		return
	}
	writeJSON(w, r, http.StatusOK, status)
}

// handleReady handles the readiness endpoint.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := s.deps.HealthChecker.Check(r.Context())
	if !status.Ready {
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": status.Message,
		})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness endpoint.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// GAMES & LEADERBOARD
// ══════════════════════════════════════════════════════════════════════════════

// handleListGames handles GET /api/v1/games
func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	defs := s.deps.ListGames.Handle(r.Context())
	out := make([]gameDTO, len(defs))
	for i, d := range defs {
		out[i] = toGame(d)
	}
	writeJSON(w, r, http.StatusOK, out)
}

// handleGetLeaderboard handles GET /api/v1/leaderboard/{game}
func (s *Server) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	lb, err := s.deps.GetLeaderboard.Handle(r.Context(), query.GetLeaderboardQuery{
		GameType: r.PathValue("game"),
		Limit:    getQueryParamInt(r, "limit", 0),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toLeaderboard(lb))
}

// ══════════════════════════════════════════════════════════════════════════════
// USERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRegisterUser handles POST /api/v1/users
func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := s.deps.RegisterUser.Handle(r.Context(), command.RegisterUserCommand{
		Username:    req.Username,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toUser(u))
}

// handleGetProfile handles GET /api/v1/users/{id}/profile
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	p, err := s.deps.GetProfile.Handle(r.Context(), userID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toProfile(p, s.featureOn(config.FeatureRatingHistory, userID)))
}

// handleGetStreaks handles GET /api/v1/users/{id}/streaks
func (s *Server) handleGetStreaks(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.GetStreaks.Handle(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toStreaks(st))
}

// handleListGroups handles GET /api/v1/users/{id}/groups
func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.deps.ListGroups.Handle(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	out := make([]groupDTO, len(groups))
	for i, g := range groups {
		out[i] = toGroup(g)
	}
	writeJSON(w, r, http.StatusOK, out)
}

// ══════════════════════════════════════════════════════════════════════════════
// SCORES
// ══════════════════════════════════════════════════════════════════════════════

// handleSubmitScore handles POST /api/v1/scores
func (s *Server) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	var req submitScoreRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" {
		req.UserID = r.Header.Get(userIDHeader)
	}

	cmd := command.SubmitScoreCommand{
		UserID:      req.UserID,
		GameType:    req.GameType,
		RawResult:   req.RawResult,
		Attempts:    req.Attempts,
		Solved:      req.Solved,
		Score:       req.Score,
		TimeSeconds: req.TimeSeconds,
	}
	if req.GameDate != nil {
		d, err := time.Parse(dateLayout, *req.GameDate)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", "game_date must be YYYY-MM-DD")
			return
		}
		cmd.GameDate = &d
	}

	res, err := s.deps.SubmitScore.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	logger.FromContext(r.Context()).Info("score submitted",
		logger.UserID(res.Score.UserID.String()),
		logger.GameType(res.Score.GameType.String()),
		logger.Int("rating_change", res.RatingChange),
	)
	writeJSON(w, r, http.StatusCreated, toSubmitResult(res))
}

// handleScoresToday handles GET /api/v1/scores/today
func (s *Server) handleScoresToday(w http.ResponseWriter, r *http.Request) {
	feed, err := s.deps.ListScores.Handle(r.Context(), nil)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toScoreFeed(feed))
}

// handleScoresByDate handles GET /api/v1/scores/date/{date}
func (s *Server) handleScoresByDate(w http.ResponseWriter, r *http.Request) {
	d, err := time.Parse(dateLayout, r.PathValue("date"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "date must be YYYY-MM-DD")
		return
	}
	feed, err := s.deps.ListScores.Handle(r.Context(), &d)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toScoreFeed(feed))
}

// handleGroupScores handles GET /api/v1/scores/group/{id}?date=YYYY-MM-DD
func (s *Server) handleGroupScores(w http.ResponseWriter, r *http.Request) {
	var date *time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", "date must be YYYY-MM-DD")
			return
		}
		date = &d
	}
	feed, err := s.deps.GroupScores.Handle(r.Context(), r.Header.Get(userIDHeader), r.PathValue("id"), date)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toScoreFeed(feed))
}

// ══════════════════════════════════════════════════════════════════════════════
// GROUPS
// ══════════════════════════════════════════════════════════════════════════════

// handleCreateGroup handles POST /api/v1/groups
func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupNameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	g, err := s.deps.ManageGroup.Create(r.Context(), command.CreateGroupCommand{
		OwnerID: r.Header.Get(userIDHeader),
		Name:    req.Name,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toGroup(g))
}

// handleJoinGroup handles POST /api/v1/groups/join
func (s *Server) handleJoinGroup(w http.ResponseWriter, r *http.Request) {
	var req joinGroupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	g, err := s.deps.ManageGroup.Join(r.Context(), command.JoinGroupCommand{
		UserID:     r.Header.Get(userIDHeader),
		InviteCode: req.InviteCode,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toGroup(g))
}

// handleGetGroup handles GET /api/v1/groups/{id}
func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	viewerID := r.Header.Get(userIDHeader)
	v, err := s.deps.GetGroup.Handle(r.Context(), viewerID, r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toGroupView(v, s.featureOn(config.FeatureGroupStats, viewerID)))
}

// handleRenameGroup handles PATCH /api/v1/groups/{id}
func (s *Server) handleRenameGroup(w http.ResponseWriter, r *http.Request) {
	var req groupNameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cmd := s.memberCommand(r)
	cmd.Name = req.Name
	s.respondNoContent(w, r, s.deps.ManageGroup.Rename(r.Context(), cmd))
}

// handleDeleteGroup handles DELETE /api/v1/groups/{id}
func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	s.respondNoContent(w, r, s.deps.ManageGroup.Delete(r.Context(), s.memberCommand(r)))
}

// handleLeaveGroup handles POST /api/v1/groups/{id}/leave
func (s *Server) handleLeaveGroup(w http.ResponseWriter, r *http.Request) {
	s.respondNoContent(w, r, s.deps.ManageGroup.Leave(r.Context(), s.memberCommand(r)))
}

// handleRemoveMember handles DELETE /api/v1/groups/{id}/members/{userID}
func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	cmd := s.memberCommand(r)
	cmd.TargetID = r.PathValue("userID")
	s.respondNoContent(w, r, s.deps.ManageGroup.RemoveMember(r.Context(), cmd))
}

func (s *Server) memberCommand(r *http.Request) command.GroupMemberCommand {
	return command.GroupMemberCommand{
		UserID:  r.Header.Get(userIDHeader),
		GroupID: r.PathValue("id"),
	}
}

func (s *Server) respondNoContent(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) featureOn(name, userID string) bool {
	if s.deps.Features == nil {
		return true
	}
	return s.deps.Features.IsEnabledFor(name, userID)
}

// decodeJSON reads the request body into dst and answers 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body too large")
			return false
		}
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return false
	}
	return true
}

// statusFor maps an error kind to an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case shared.IsValidation(err):
		return http.StatusBadRequest, "invalid_request"
	case shared.IsNotFound(err):
		return http.StatusNotFound, "not_found"
	case shared.IsAlreadyExists(err):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, shared.ErrInvalidState):
		return http.StatusConflict, "invalid_state"
	case shared.IsForbidden(err):
		return http.StatusForbidden, "forbidden"
	case shared.IsRateLimited(err):
		return http.StatusTooManyRequests, "rate_limited"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeDomainError answers with the status of the error kind. Only domain
// errors expose their message; anything else is logged and hidden.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)

	var de *shared.DomainError
	message := "Internal server error"
	if status != http.StatusInternalServerError && errors.As(err, &de) {
		message = de.Message
	}

	log := logger.FromContext(r.Context())
	if status == http.StatusInternalServerError {
		log.Error("request failed", logger.String("path", r.URL.Path), logger.Err(err))
	} else {
		log.Debug("request rejected", logger.String("path", r.URL.Path), logger.Int("status", status), logger.Err(err))
	}

	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", "60")
	}
	writeJSONError(w, status, code, strings.TrimSpace(message))
}
