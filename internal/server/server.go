// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Lonli-Lokli/vinto/internal/auth"
	"github.com/Lonli-Lokli/vinto/internal/cache"
	"github.com/Lonli-Lokli/vinto/internal/config"
	"github.com/Lonli-Lokli/vinto/internal/database"
	"github.com/Lonli-Lokli/vinto/internal/game"
	"github.com/Lonli-Lokli/vinto/internal/models"
)

// Server is the HTTP and WebSocket front of the service.
type Server struct {
	cfg   config.Config
	games *game.Store
}

// New builds a server around the given config.
func New(cfg config.Config) *Server {
	return &Server{cfg: cfg, games: game.NewStore()}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /games", s.handleCreateGame)
	mux.HandleFunc("POST /games/{id}/start", s.handleStartGame)
	mux.HandleFunc("GET /games/{id}/log", s.handleGameLog)
	mux.HandleFunc("GET /games/{id}/ws", s.handleGameWS)
	return mux
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logrus.Infof("server: listening on %s", s.cfg.Addr)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token  string    `json:"token"`
	UserID uuid.UUID `json:"userId"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		logrus.Errorf("server: hash password: %v", err)
		httpError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	id, _ := uuid.NewRandom()
	user := &models.User{
		ID:           id,
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
	}
	if user.Username == "" {
		user.Username = req.Email
	}
	if err := database.CreateUser(r.Context(), user); err != nil {
		logrus.Warnf("server: create user: %v", err)
		httpError(w, http.StatusConflict, "could not create user")
		return
	}
	s.issueToken(w, user.ID)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	user, err := database.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		httpError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	ok, err := auth.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		httpError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	s.issueToken(w, user.ID)
}

func (s *Server) issueToken(w http.ResponseWriter, userID uuid.UUID) {
	token, err := auth.CreateToken(s.cfg.JWTSecret, userID)
	if err != nil {
		logrus.Errorf("server: create token: %v", err)
		httpError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token, UserID: userID})
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	g := s.games.Create()
	g.TurnDuration = time.Duration(s.cfg.TurnTimerSec) * time.Second
	g.OnGameEnd = func(gameID uuid.UUID, winner uuid.UUID, scores map[uuid.UUID]int) {
		s.games.Remove(gameID)
	}
	writeJSON(w, http.StatusCreated, map[string]string{"gameId": g.ID.String()})
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	g, ok := s.gameFromPath(w, r)
	if !ok {
		return
	}
	g.Begin()
	w.WriteHeader(http.StatusNoContent)
}

// handleGameLog returns a game's ordered action log for replay. The log
// outlives the in-memory game, so the ID is not resolved against the store.
func (s *Server) handleGameLog(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httpError(w, http.StatusBadRequest, "malformed game id")
		return
	}
	records, err := cache.FetchGameActions(r.Context(), id)
	if err != nil {
		logrus.Errorf("server: fetch action log for game %s: %v", id, err)
		httpError(w, http.StatusInternalServerError, "could not read action log")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"gameId": id, "actions": records})
}

// handleGameWS upgrades the connection, seats the player, and pumps actions
// until the socket closes.
func (s *Server) handleGameWS(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	g, ok := s.gameFromPath(w, r)
	if !ok {
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		logrus.Warnf("server: websocket accept: %v", err)
		return
	}

	user, err := database.GetUserByID(r.Context(), userID)
	if err != nil {
		// Persistence may be disabled; fall back to a bare user record.
		user = &models.User{ID: userID, Username: userID.String()}
	}

	player := &models.Player{
		ID:        userID,
		User:      user,
		Conn:      conn,
		Connected: true,
	}

	g.Mu.Lock()
	s.wireBroadcasts(g)
	g.AddPlayer(player)
	g.Mu.Unlock()

	s.readLoop(r.Context(), g, player)
}

// wireBroadcasts installs the WebSocket fan-out callbacks once per game.
// Assumes the game lock is held by the caller.
func (s *Server) wireBroadcasts(g *game.VintoGame) {
	if g.BroadcastFn != nil {
		return
	}
	g.BroadcastFn = func(ev game.GameEvent) {
		for _, p := range g.Players {
			if p.Connected && p.Conn != nil {
				writeEvent(p.Conn, ev)
			}
		}
	}
	g.BroadcastToPlayerFn = func(playerID uuid.UUID, ev game.GameEvent) {
		for _, p := range g.Players {
			if p.ID == playerID && p.Connected && p.Conn != nil {
				writeEvent(p.Conn, ev)
				return
			}
		}
	}
}

// readLoop consumes wire actions from one player's socket.
func (s *Server) readLoop(ctx context.Context, g *game.VintoGame, player *models.Player) {
	defer g.HandleDisconnect(player.ID)
	for {
		var action models.GameAction
		if err := wsjson.Read(ctx, player.Conn, &action); err != nil {
			logrus.Debugf("server: read from player %s: %v", player.ID, err)
			return
		}
		if isAdminActionType(action.Type) {
			if player.User != nil && player.User.IsAdmin {
				g.HandleAdminAction(player.ID, action)
			}
			continue
		}
		g.HandlePlayerAction(player.ID, action)
	}
}

func isAdminActionType(t string) bool {
	switch t {
	case "update-difficulty", "set-next-draw-card", "swap-hand-with-deck":
		return true
	}
	return false
}

// writeEvent ships one event over a socket with a short deadline so one slow
// client cannot stall the table.
func writeEvent(conn *websocket.Conn, ev game.GameEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wsjson.Write(ctx, conn, ev); err != nil {
		logrus.Debugf("server: write event %s: %v", ev.Type, err)
	}
}

// authenticate extracts and verifies the bearer token from the Authorization
// header or the token query parameter (used by WebSocket clients).
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	token := r.URL.Query().Get("token")
	if token == "" {
		const prefix = "Bearer "
		h := r.Header.Get("Authorization")
		if len(h) > len(prefix) && h[:len(prefix)] == prefix {
			token = h[len(prefix):]
		}
	}
	if token == "" {
		httpError(w, http.StatusUnauthorized, "missing token")
		return uuid.Nil, false
	}
	userID, err := auth.VerifyToken(s.cfg.JWTSecret, token)
	if err != nil {
		httpError(w, http.StatusUnauthorized, "invalid token")
		return uuid.Nil, false
	}
	return userID, true
}

func (s *Server) gameFromPath(w http.ResponseWriter, r *http.Request) (*game.VintoGame, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httpError(w, http.StatusBadRequest, "malformed game id")
		return nil, false
	}
	g := s.games.Get(id)
	if g == nil {
		httpError(w, http.StatusNotFound, "game not found")
		return nil, false
	}
	return g, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
