package http

import (
	"net/http"

	domuser "example.com/voltcart/app/internal/domain/user"
	useruc "example.com/voltcart/app/internal/usecase/user"
)

type createUserRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	RoleCode string `json:"role_code" validate:"required"`
}

type updateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=255"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	RoleCode *string `json:"role_code"`
	IsActive *bool   `json:"is_active"`
}

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	filter := domuser.ListFilter{Search: r.URL.Query().Get("q")}
	if s := r.URL.Query().Get("role"); s != "" {
		role, err := domuser.ParseRoleCode(s)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		filter.RoleCode = &role
	}

	users, err := a.userSvc.ListUsers(r.Context(), filter)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(users))
	for _, u := range users {
		resp = append(resp, mapUser(u))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (a *API) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	u, err := a.userSvc.GetUser(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapUser(u))
}

func (a *API) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	executor := getAuthUser(r.Context())
	if executor == nil {
		respondError(w, http.StatusUnauthorized, errUnauthenticated)
		return
	}

	var req createUserRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	role, err := domuser.ParseRoleCode(req.RoleCode)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	u, err := a.userSvc.CreateUser(r.Context(), useruc.CreateUserInput{
		ExecutorRole: executor.RoleCode,
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		RoleCode:     role,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapUser(u))
}

func (a *API) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	executor := getAuthUser(r.Context())
	if executor == nil {
		respondError(w, http.StatusUnauthorized, errUnauthenticated)
		return
	}
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	var req updateUserRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	in := useruc.UpdateUserInput{
		ExecutorRole: executor.RoleCode,
		ID:           id,
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		IsActive:     req.IsActive,
	}
	if req.RoleCode != nil {
		role, err := domuser.ParseRoleCode(*req.RoleCode)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		in.RoleCode = &role
	}

	u, err := a.userSvc.UpdateUser(r.Context(), in)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapUser(u))
}
