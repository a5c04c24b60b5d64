package auth

import (
	"encoding/json"
	"net/http"

	"github.com/user/streamtube-go/apperror"
	"github.com/user/streamtube-go/media"
	"github.com/user/streamtube-go/response"
)

// maxUploadSize bounds the in-memory portion of a multipart registration form.
const maxUploadSize = 32 << 20 // 32 MiB

// Handlers exposes the auth service over HTTP.
type Handlers struct {
	service *AuthService
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *AuthService) *Handlers {
	return &Handlers{service: service}
}

// HandleRegister godoc
// @Summary Register a new user
// @Description Registers a new user from a multipart form with a required avatar and an optional cover image.
// @Tags auth
// @Accept mpfd
// @Produce json
// @Param fullName formData string true "Full display name"
// @Param username formData string true "Unique username"
// @Param email formData string true "Unique email"
// @Param password formData string true "Password"
// @Param avatar formData file true "Avatar image"
// @Param coverImage formData file false "Cover image"
// @Success 201 {object} response.Envelope{data=auth.User} "User created"
// @Failure 400 {object} apperror.ErrorResponse "Missing fields or avatar"
// @Failure 409 {object} apperror.ErrorResponse "Username or email already taken"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /auth/register [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			response.Error(w, r, apperror.NewBadRequestError("invalid multipart form: "+err.Error(), err))
			return
		}

		req := RegisterRequest{
			FullName: r.FormValue("fullName"),
			Username: r.FormValue("username"),
			Email:    r.FormValue("email"),
			Password: r.FormValue("password"),
		}

		avatar, closeAvatar, err := firstFormFile(r, "avatar")
		if err != nil {
			response.Error(w, r, apperror.NewBadRequestError("failed to read avatar file", err))
			return
		}
		if closeAvatar != nil {
			defer closeAvatar()
		}

		coverImage, closeCover, err := firstFormFile(r, "coverImage")
		if err != nil {
			response.Error(w, r, apperror.NewBadRequestError("failed to read cover image file", err))
			return
		}
		if closeCover != nil {
			defer closeCover()
		}

		user, err := h.service.Register(r.Context(), req, avatar, coverImage)
		if err != nil {
			response.Error(w, r, err)
			return
		}

		response.JSON(w, http.StatusCreated, user, "user registered successfully")
	}
}

// HandleLogin godoc
// @Summary Log in
// @Description Authenticates by username or email plus password. Sets accessToken and refreshToken cookies and returns both tokens in the body.
// @Tags auth
// @Accept json
// @Produce json
// @Param loginBody body auth.LoginRequest true "Login credentials"
// @Success 200 {object} response.Envelope{data=auth.LoginResponse} "Logged in"
// @Failure 400 {object} apperror.ErrorResponse "Missing credentials"
// @Failure 401 {object} apperror.ErrorResponse "Invalid credentials"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /auth/login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), err))
			return
		}
		defer r.Body.Close()

		resp, err := h.service.Login(r.Context(), req)
		if err != nil {
			response.Error(w, r, err)
			return
		}

		setTokenCookie(w, AccessTokenCookie, resp.AccessToken)
		setTokenCookie(w, RefreshTokenCookie, resp.RefreshToken)
		response.JSON(w, http.StatusOK, resp, "user logged in successfully")
	}
}

// HandleLogout godoc
// @Summary Log out
// @Description Clears the stored refresh token and both token cookies. Requires authentication.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope "Logged out"
// @Failure 401 {object} apperror.ErrorResponse "Not authenticated"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /auth/logout [post]
func (h *Handlers) HandleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			response.Error(w, r, apperror.NewUnauthorizedError("access denied", nil))
			return
		}

		if err := h.service.Logout(r.Context(), user.ID); err != nil {
			response.Error(w, r, err)
			return
		}

		clearTokenCookie(w, AccessTokenCookie)
		clearTokenCookie(w, RefreshTokenCookie)
		response.JSON(w, http.StatusOK, struct{}{}, "user logged out successfully")
	}
}

// HandleRefresh godoc
// @Summary Refresh the token pair
// @Description Exchanges a valid refresh token (cookie or body) for a rotated access/refresh pair and sets new cookies.
// @Tags auth
// @Accept json
// @Produce json
// @Param refreshBody body auth.RefreshRequest false "Refresh token, if not sent as a cookie"
// @Success 200 {object} response.Envelope{data=auth.TokenPair} "Tokens refreshed"
// @Failure 401 {object} apperror.ErrorResponse "Missing, invalid, expired or superseded refresh token"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /auth/refresh [post]
func (h *Handlers) HandleRefresh() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		presented := refreshTokenFromRequest(r)
		if presented == "" {
			response.Error(w, r, apperror.NewUnauthorizedError("unauthorized request", nil))
			return
		}

		pair, err := h.service.Refresh(r.Context(), presented)
		if err != nil {
			response.Error(w, r, err)
			return
		}

		setTokenCookie(w, AccessTokenCookie, pair.AccessToken)
		setTokenCookie(w, RefreshTokenCookie, pair.RefreshToken)
		response.JSON(w, http.StatusOK, pair, "access token refreshed")
	}
}

// refreshTokenFromRequest reads the refresh token from its cookie, falling
// back to the JSON body.
func refreshTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(RefreshTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return ""
	}
	defer r.Body.Close()
	return req.RefreshToken
}

// firstFormFile opens the first uploaded file for the given field, mirroring
// the "first file wins" contract of the registration form. Returns a nil
// file when the field is absent.
func firstFormFile(r *http.Request, field string) (*media.File, func(), error) {
	if r.MultipartForm == nil {
		return nil, nil, nil
	}
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil, nil, nil
	}

	f, err := headers[0].Open()
	if err != nil {
		return nil, nil, err
	}
	contentType := headers[0].Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &media.File{Reader: f, ContentType: contentType}, func() { f.Close() }, nil
}

func setTokenCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
	})
}

func clearTokenCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		MaxAge:   -1,
	})
}
