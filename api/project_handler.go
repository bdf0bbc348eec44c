package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/webmaek/aventus/errs"
	"github.com/webmaek/aventus/services"
)

type projectHandler struct {
	responder Responder
	logger    zerolog.Logger
	projects  *services.ProjectService
}

func newProjectHandler(projects *services.ProjectService) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder: NewResponder(logger),
		logger:    logger,
		projects:  projects,
	}
}

// getProjects lists projects. With limit, cursor or query set it serves one feed page,
// otherwise every project (optionally by tag) with the total count.
// @Summary List projects
// @Tags Projects
// @Produce json
// @Param limit query int false "Page size (1-50, default 10)"
// @Param cursor query string false "Id of the first project of the page"
// @Param tag query string false "Tag name"
// @Param query query string false "Title substring"
// @Success 200 {object} services.FeedPage "Feed page"
// @Success 200 {object} services.ProjectList "All projects"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid limit"
// @Router /api/projects [get]
func (h projectHandler) getProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		if !q.Has("limit") && !q.Has("cursor") && !q.Has("query") {
			list, err := h.projects.FindAll(r.Context(), q.Get("tag"))
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			h.responder.WriteJSON(w, list)
			return
		}

		limit := 0
		if raw := q.Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				h.responder.WriteError(w, errs.NewInvalidFieldError("limit", "must be an integer"))
				return
			}
			limit = parsed
		}

		page, err := h.projects.Feed(r.Context(), services.FeedQuery{
			Limit:  limit,
			Cursor: q.Get("cursor"),
			Tag:    q.Get("tag"),
			Query:  q.Get("query"),
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, page)
	}
}

// getProject retrieves a project by slug with tags, owner, likes, bookmarks and counts
// @Summary Get project
// @Tags Projects
// @Produce json
// @Param slug path string true "Project slug"
// @Success 200 {object} models.Project
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /api/projects/{slug} [get]
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := h.projects.FindOne(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, project)
	}
}

func (h projectHandler) getProjectStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := h.projects.GetProjectStats(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, stats)
	}
}

func (req projectRequest) toInput() services.ProjectInput {
	tags := make([]uuid.UUID, 0, len(req.Tags))
	for _, raw := range req.Tags {
		// ids were checked by the validator
		tags = append(tags, uuid.MustParse(raw))
	}
	return services.ProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		Tags:        tags,
	}
}

// createProject publishes a project owned by the caller
// @Summary Create project
// @Tags Projects
// @Accept json
// @Produce json
// @Param project body projectRequest true "Project data"
// @Success 201 {object} models.Project
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid project data"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 409 {object} ErrorResponse "Conflict - Slug already taken"
// @Router /api/projects [post]
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := ctxGetIdentity(r.Context())

		var req projectRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projects.CreateOne(r.Context(), req.toInput(), id.ID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONWithStatus(w, http.StatusCreated, project)
	}
}

// updateProject replaces title, description, content and tags of the caller's project
// @Summary Update project
// @Tags Projects
// @Accept json
// @Produce json
// @Param slug path string true "Project slug"
// @Param project body projectRequest true "Project data"
// @Success 200 {object} models.Project
// @Failure 403 {object} ErrorResponse "Forbidden - Not the owner"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /api/projects/{slug} [put]
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := ctxGetIdentity(r.Context())

		var req projectRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projects.UpdateOne(r.Context(), req.toInput(), chi.URLParam(r, "slug"), id.ID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, project)
	}
}

func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := ctxGetIdentity(r.Context())

		if err := h.projects.DeleteOne(r.Context(), chi.URLParam(r, "slug"), id.ID); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteNoContent(w)
	}
}

func (h projectHandler) likeProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := ctxGetIdentity(r.Context())

		result, err := h.projects.LikeProject(r.Context(), chi.URLParam(r, "slug"), id.ID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, result)
	}
}

func (h projectHandler) bookmarkProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := ctxGetIdentity(r.Context())

		result, err := h.projects.BookmarkProject(r.Context(), chi.URLParam(r, "slug"), id.ID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, result)
	}
}
