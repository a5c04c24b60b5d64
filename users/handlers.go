package users

import (
	"encoding/json"
	"net/http"

	"github.com/user/streamtube-go/apperror"
	"github.com/user/streamtube-go/auth"
	"github.com/user/streamtube-go/response"
)

// Handlers exposes profile operations over HTTP. All routes sit behind the
// auth middleware, which attaches the current user to the request context.
type Handlers struct {
	service *UserService
}

// NewHandlers creates new user profile handlers.
func NewHandlers(service *UserService) *Handlers {
	return &Handlers{service: service}
}

// HandleCurrentUser godoc
// @Summary Get the current user
// @Description Returns the profile of the authenticated user.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=auth.User} "Current user"
// @Failure 401 {object} apperror.ErrorResponse "Not authenticated"
// @Router /users/me [get]
func (h *Handlers) HandleCurrentUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			response.Error(w, r, apperror.NewUnauthorizedError("access denied", nil))
			return
		}
		response.JSON(w, http.StatusOK, user, "current user fetched successfully")
	}
}

// HandleChangePassword godoc
// @Summary Change the current user's password
// @Description Verifies the old password and replaces it with the new one.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param passwordBody body ChangePasswordRequest true "Old and new passwords"
// @Success 200 {object} response.Envelope "Password changed"
// @Failure 400 {object} apperror.ErrorResponse "Missing fields"
// @Failure 401 {object} apperror.ErrorResponse "Wrong old password"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /users/change-password [post]
func (h *Handlers) HandleChangePassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			response.Error(w, r, apperror.NewUnauthorizedError("access denied", nil))
			return
		}

		var req ChangePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), err))
			return
		}
		defer r.Body.Close()

		if err := h.service.ChangePassword(r.Context(), user.ID, req); err != nil {
			response.Error(w, r, err)
			return
		}

		response.JSON(w, http.StatusOK, struct{}{}, "password changed successfully")
	}
}
