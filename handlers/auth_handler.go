package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/leagueforge/league-engine/services"
	"github.com/leagueforge/league-engine/utils"
)

// AuthHandler issues admin tokens. There is a single operator account,
// configured through the environment; no self-service registration.
type AuthHandler struct {
	adminLogin        string
	adminPasswordHash string
	jwtSecret         []byte
}

func NewAuthHandler(adminLogin, adminPasswordHash, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		adminLogin:        adminLogin,
		adminPasswordHash: adminPasswordHash,
		jwtSecret:         []byte(jwtSecret),
	}
}

type loginInput struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input loginInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Login == "" || input.Password == "" {
		badRequestResponse(w, r, errors.New("login and password are required"))
		return
	}

	if input.Login != h.adminLogin || !utils.CheckPasswordHash(input.Password, h.adminPasswordHash) {
		mapServiceErrorToHTTP(w, r, services.ErrInvalidCredentials)
		return
	}

	claims := jwt.MapClaims{
		"sub":  input.Login,
		"role": "admin",
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(h.jwtSecret)
	if err != nil {
		serverErrorResponse(w, r, fmt.Errorf("failed to sign token: %w", err))
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"token": tokenString}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
