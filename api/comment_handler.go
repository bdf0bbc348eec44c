package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/webmaek/aventus/services"
)

type commentHandler struct {
	responder Responder
	projects  *services.ProjectService
}

func newCommentHandler(projects *services.ProjectService) commentHandler {
	return commentHandler{
		responder: NewResponder(log.With().Str("handlerName", "commentHandler").Logger()),
		projects:  projects,
	}
}

// getComments lists a project's comments, newest first. Unknown projects have none.
// @Summary List comments
// @Tags Comments
// @Produce json
// @Param slug path string true "Project slug"
// @Success 200 {array} models.Comment
// @Router /api/projects/{slug}/comments [get]
func (h commentHandler) getComments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		comments, err := h.projects.GetComments(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, comments)
	}
}

func (h commentHandler) createComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := ctxGetIdentity(r.Context())

		var req commentRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		comment, err := h.projects.CreateComment(r.Context(), req.Content, id.ID, chi.URLParam(r, "slug"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONWithStatus(w, http.StatusCreated, comment)
	}
}

func (h commentHandler) getComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		commentID, err := uuidParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		comment, err := h.projects.FindOneComment(r.Context(), chi.URLParam(r, "slug"), commentID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, comment)
	}
}

func (h commentHandler) updateComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := ctxGetIdentity(r.Context())

		commentID, err := uuidParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req commentRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		comment, err := h.projects.UpdateComment(r.Context(), req.Content, chi.URLParam(r, "slug"), commentID, id.ID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, comment)
	}
}

func (h commentHandler) deleteComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := ctxGetIdentity(r.Context())

		commentID, err := uuidParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.projects.DeleteComment(r.Context(), chi.URLParam(r, "slug"), commentID, id.ID); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteNoContent(w)
	}
}
