package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"calculations-api/internal/auth"
	"calculations-api/internal/models"
	"calculations-api/internal/storage"
)

// RegisterHandler creates a new user. The password is hashed before it ever
// reaches the store; the response carries the public fields only.
func RegisterHandler(s storage.Store, minPasswordLen int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Username == "" || req.Email == "" || req.Password == "" {
			respondWithError(w, http.StatusBadRequest, "Username, email and password are required")
			return
		}
		if !strings.Contains(req.Email, "@") {
			respondWithError(w, http.StatusBadRequest, "Invalid email address")
			return
		}
		if len(req.Password) < minPasswordLen {
			respondWithError(w, http.StatusBadRequest,
				fmt.Sprintf("Password must be at least %d characters", minPasswordLen))
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		user := models.User{
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: hash,
		}

		if err := s.CreateUser(r.Context(), &user); err != nil {
			if errors.Is(err, storage.ErrUserExists) {
				respondWithError(w, http.StatusBadRequest, "Username or email already registered")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		respondWithJSON(w, http.StatusCreated, user)
	}
}

// LoginHandler exchanges form credentials for a bearer token. Unknown users
// and wrong passwords produce the same response so usernames cannot be
// enumerated.
func LoginHandler(s storage.Store, tokens *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid form data")
			return
		}

		username := r.PostFormValue("username")
		password := r.PostFormValue("password")
		if username == "" || password == "" {
			respondWithError(w, http.StatusBadRequest, "Username and password are required")
			return
		}

		user, err := s.GetUserByUsername(r.Context(), username)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				respondWithError(w, http.StatusUnauthorized, "Incorrect username or password")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		if !auth.CheckPassword(user.PasswordHash, password) {
			respondWithError(w, http.StatusUnauthorized, "Incorrect username or password")
			return
		}

		token, err := tokens.Issue(user)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		respondWithJSON(w, http.StatusOK, models.TokenResponse{
			AccessToken: token,
			TokenType:   "bearer",
		})
	}
}
