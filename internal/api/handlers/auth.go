package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/zilix-space/adapix-backend/internal/api/httpx"
	"github.com/zilix-space/adapix-backend/internal/auth"
	"github.com/zilix-space/adapix-backend/internal/models"
	repo "github.com/zilix-space/adapix-backend/internal/repository"
)

type AuthHandler struct {
	Users repo.Users
	TM    *auth.TokenManager
}

func NewAuthHandler(users repo.Users, tm *auth.TokenManager) *AuthHandler {
	return &AuthHandler{Users: users, TM: tm}
}

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Document string `json:"document"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid body", nil)
		return
	}
	if len(req.Password) < 8 {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "password too short", nil)
		return
	}
	u := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Role:     "user",
		Document: req.Document,
		Phone:    req.Phone,
		Address:  req.Address,
	}
	if err := u.Validate(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "hash failed", nil)
		return
	}
	u.PasswordHash = hash

	created, err := h.Users.Create(r.Context(), u)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, created)
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResp struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid body", nil)
		return
	}
	u, err := h.Users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials", nil)
		return
	}
	if err := auth.VerifyPassword(req.Password, u.PasswordHash); err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials", nil)
		return
	}
	tok, exp, err := h.TM.Generate(u.ID, u.Role)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "token generation failed", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResp{AccessToken: tok, ExpiresAt: exp})
}
