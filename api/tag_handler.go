package api

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/webmaek/aventus/services"
)

type tagHandler struct {
	responder Responder
	tags      *services.TagService
}

func newTagHandler(tags *services.TagService) tagHandler {
	return tagHandler{
		responder: NewResponder(log.With().Str("handlerName", "tagHandler").Logger()),
		tags:      tags,
	}
}

func (h tagHandler) getTags() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := h.tags.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, tags)
	}
}

func (h tagHandler) createTag() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tagRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		tag, err := h.tags.CreateOne(r.Context(), req.Name)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONWithStatus(w, http.StatusCreated, tag)
	}
}
