package httpserver

import (
	"encoding/json"
	"net/http"

	"chatapi/internal/domain"
	"chatapi/internal/service"
)

type registerRequest struct {
	Username string  `json:"username"`
	Email    *string `json:"email"`
	Password string  `json:"password"`
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// tokenPairResponse is the body returned by /token: an access/refresh pair.
type tokenPairResponse struct {
	Access  string       `json:"access"`
	Refresh string       `json:"refresh"`
	User    *domain.User `json:"user,omitempty"`
}

// @Summary      Register a new user
// @Description  Register a new user and return a token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body registerRequest true "Register input"
// @Success      201  {object}  tokenPairResponse
// @Failure      400  {object}  map[string][]string
// @Router       /register [post]
func handleRegister(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			invalidJSON(w)
			return
		}

		user, err := authSvc.Register(r.Context(), service.RegisterInput{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		// Auto-login after registration
		pair, err := authSvc.Login(r.Context(), service.LoginInput{
			Username: req.Username,
			Password: req.Password,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, tokenPairResponse{
			Access:  pair.Access,
			Refresh: pair.Refresh,
			User:    user,
		})
	}
}

// @Summary      Obtain a token pair
// @Description  Exchange username and password for access and refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body tokenRequest true "Credentials"
// @Success      200  {object}  tokenPairResponse
// @Failure      401  {object}  map[string]string
// @Router       /token [post]
func handleToken(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			invalidJSON(w)
			return
		}

		pair, err := authSvc.Login(r.Context(), service.LoginInput{
			Username: req.Username,
			Password: req.Password,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tokenPairResponse{
			Access:  pair.Access,
			Refresh: pair.Refresh,
		})
	}
}

// @Summary      Refresh an access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body refreshRequest true "Refresh token"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /token/refresh [post]
func handleTokenRefresh(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			invalidJSON(w)
			return
		}

		access, err := authSvc.Refresh(r.Context(), req.Refresh)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access": access})
	}
}
