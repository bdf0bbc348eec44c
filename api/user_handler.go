package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/webmaek/aventus/auth"
	"github.com/webmaek/aventus/errs"
	"github.com/webmaek/aventus/services"
)

type userHandler struct {
	responder Responder
	logger    zerolog.Logger
	users     *services.UserService
	projects  *services.ProjectService
	cookie    auth.CookieConfig
}

func newUserHandler(users *services.UserService, projects *services.ProjectService, cookie auth.CookieConfig) userHandler {
	logger := log.With().Str("handlerName", "userHandler").Logger()

	return userHandler{
		responder: NewResponder(logger),
		logger:    logger,
		users:     users,
		projects:  projects,
		cookie:    cookie,
	}
}

// register creates a USER account
// @Summary Register
// @Tags Users
// @Accept json
// @Produce json
// @Param user body registerRequest true "Account data"
// @Success 201 {object} models.User
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid account data"
// @Failure 409 {object} ErrorResponse "Conflict - Email already registered"
// @Router /api/users [post]
func (h userHandler) register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.users.Register(r.Context(), services.RegisterInput{
			Email:    req.Email,
			Password: req.Password,
			Name:     req.Name,
			Avatar:   req.Avatar,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONWithStatus(w, http.StatusCreated, user)
	}
}

// login verifies credentials, sets the auth cookie and returns the access token
// @Summary Login
// @Tags Users
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Email and password"
// @Success 200 {object} loginResponse
// @Failure 401 {object} ErrorResponse "Unauthorized - Invalid credentials"
// @Failure 429 {object} ErrorResponse "Too Many Requests"
// @Router /api/users/login [post]
func (h userHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		result, err := h.users.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			if errs.IsUnauthorized(err) {
				h.logger.Info().Str("remote_addr", r.RemoteAddr).Msg("Failed login attempt")
			}
			h.responder.WriteError(w, err)
			return
		}

		auth.SetCookie(w, h.cookie, result.AccessToken)
		h.responder.WriteJSON(w, loginResponse{AccessToken: result.AccessToken})
	}
}

func (h userHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth.ClearCookie(w, h.cookie)
		h.responder.WriteJSON(w, successResponse{Success: true})
	}
}

// getMe returns the caller's profile, or null for anonymous callers.
func (h userHandler) getMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := ctxGetIdentity(r.Context())
		if !ok {
			h.responder.WriteJSON(w, nil)
			return
		}

		user, err := h.users.GetUserDetails(r.Context(), id.ID)
		if errs.IsNotFound(err) {
			h.responder.WriteJSON(w, nil)
			return
		}
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, user)
	}
}

func (h userHandler) updateMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := ctxGetIdentity(r.Context())

		var req profileRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.users.UpdateUserDetails(r.Context(), id.ID, services.ProfileInput{
			Name:       req.Name,
			Bio:        req.Bio,
			Location:   req.Location,
			WebsiteURL: req.WebsiteURL,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, user)
	}
}

// deleteMe removes the caller's account and everything it owns, then clears the cookie.
func (h userHandler) deleteMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := ctxGetIdentity(r.Context())

		if err := h.users.DeleteOne(r.Context(), id.ID); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		auth.ClearCookie(w, h.cookie)
		h.responder.WriteNoContent(w)
	}
}

// uploadAvatar stores a multipart "avatar" image and returns the updated profile
// @Summary Upload avatar
// @Tags Users
// @Accept multipart/form-data
// @Produce json
// @Param avatar formData file true "PNG, JPEG, WebP or GIF image, at most 2 MiB"
// @Success 200 {object} models.User
// @Failure 413 {object} ErrorResponse "Request Entity Too Large"
// @Failure 415 {object} ErrorResponse "Unsupported Media Type"
// @Router /api/users/me/avatar [post]
func (h userHandler) uploadAvatar() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := ctxGetIdentity(r.Context())

		// leave room for the multipart envelope
		r.Body = http.MaxBytesReader(w, r.Body, services.MaxAvatarSize+64<<10)
		file, header, err := r.FormFile("avatar")
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				h.responder.WriteError(w, errs.NewMaxBodySizeExceededError(services.MaxAvatarSize))
				return
			}
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("avatar"))
			return
		}
		defer file.Close()

		if header.Size > services.MaxAvatarSize {
			h.responder.WriteError(w, errs.NewMaxBodySizeExceededError(services.MaxAvatarSize))
			return
		}

		contentType := header.Header.Get("Content-Type")
		if _, ok := services.AvatarTypes[contentType]; !ok {
			allowed := make([]string, 0, len(services.AvatarTypes))
			for t := range services.AvatarTypes {
				allowed = append(allowed, t)
			}
			h.responder.WriteError(w, errs.NewUnsupportedMediaTypeError(contentType, allowed))
			return
		}

		user, err := h.users.SetAvatar(r.Context(), id.ID, contentType, header.Size, file)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, user)
	}
}

func (h userHandler) getMyProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := ctxGetIdentity(r.Context())

		projects, err := h.projects.GetUsersProjects(r.Context(), id.ID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, projects)
	}
}

func (h userHandler) getMyBookmarks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := ctxGetIdentity(r.Context())

		projects, err := h.projects.GetBookmarkedProjects(r.Context(), id.ID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, projects)
	}
}

// getUsers lists every account. Admin only.
func (h userHandler) getUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := h.users.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, users)
	}
}

// deleteUser removes any account. Admin only.
func (h userHandler) deleteUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuidParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.users.DeleteOne(r.Context(), userID); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteNoContent(w)
	}
}
