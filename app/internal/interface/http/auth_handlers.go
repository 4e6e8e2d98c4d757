package http

import (
	"net/http"

	authuc "example.com/voltcart/app/internal/usecase/auth"
	useruc "example.com/voltcart/app/internal/usecase/user"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type signupRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// handleSignup opens a customer account and logs it straight in, so the new
// shopper gets a session for their cart in the same round trip.
func (a *API) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	u, err := a.userSvc.Register(r.Context(), useruc.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	result, err := a.authSvc.Login(r.Context(), authuc.LoginInput{
		Email:    u.Email,
		Password: req.Password,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"token":      result.Token,
		"session_id": result.SessionID,
		"user":       mapUser(result.User),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	result, err := a.authSvc.Login(r.Context(), authuc.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":      result.Token,
		"session_id": result.SessionID,
		"user":       mapUser(result.User),
	})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	user := getAuthUser(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, errUnauthenticated)
		return
	}

	u, err := a.authSvc.Me(r.Context(), user.claims())
	if err != nil {
		handleDomainError(w, err)
		return
	}

	resp := mapUser(u)
	resp["session_id"] = user.SessionID
	writeJSON(w, http.StatusOK, resp)
}
