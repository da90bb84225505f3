package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"chatapi/internal/domain"
	"chatapi/internal/pagination"
	"chatapi/internal/query"
	"chatapi/internal/service"
)

type conversationCreateRequest struct {
	Title          *string `json:"title"`
	ParticipantIDs []int64 `json:"participant_ids"`
}

type conversationUpdateRequest struct {
	Title *string `json:"title"`
}

type addParticipantRequest struct {
	User int64 `json:"user"`
}

// @Summary      List conversations
// @Description  Paginated list of the conversations the requester participates in
// @Tags         conversations
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  pagination.Page
// @Router       /conversations [get]
func handleListConversations(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		params, err := pagination.ParseParams(r.URL.Query())
		if err != nil {
			writeError(w, err)
			return
		}
		q := query.ParseConversationQuery(r.URL.Query())

		convs, count, err := convSvc.List(r.Context(), user, q, params.Offset(), params.Limit())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pagination.NewPage(convs, count, params, r.URL))
	}
}

// @Summary      Create a conversation
// @Description  Create a conversation; the creator is always added as a participant
// @Tags         conversations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Success      201  {object}  service.ConversationResponse
// @Failure      400  {object}  map[string][]string
// @Router       /conversations [post]
func handleCreateConversation(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		var req conversationCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			invalidJSON(w)
			return
		}

		conv, err := convSvc.Create(r.Context(), service.ConversationCreateInput{
			Title:          req.Title,
			ParticipantIDs: req.ParticipantIDs,
		}, user)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, conv)
	}
}

// @Summary      Get a conversation
// @Tags         conversations
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  service.ConversationResponse
// @Failure      404  {object}  map[string]string
// @Router       /conversations/{conversationID} [get]
func handleGetConversation(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		id, err := idParam(r, "conversationID")
		if err != nil {
			writeError(w, err)
			return
		}
		conv, err := convSvc.Get(r.Context(), id, user)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, conv)
	}
}

// @Summary      Update conversation metadata
// @Description  Partial update; omitted fields are unchanged
// @Tags         conversations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Success      200  {object}  service.ConversationResponse
// @Failure      404  {object}  map[string]string
// @Router       /conversations/{conversationID} [patch]
func handleUpdateConversation(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		id, err := idParam(r, "conversationID")
		if err != nil {
			writeError(w, err)
			return
		}
		var req conversationUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			invalidJSON(w)
			return
		}

		conv, err := convSvc.Update(r.Context(), id, service.ConversationUpdateInput{
			Title: req.Title,
		}, user)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, conv)
	}
}

// @Summary      Add a participant
// @Description  Any current participant may add another user; idempotent
// @Tags         conversations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Success      200  {object}  service.ConversationResponse
// @Failure      400  {object}  map[string][]string
// @Failure      404  {object}  map[string]string
// @Router       /conversations/{conversationID}/participants [post]
func handleAddParticipant(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		id, err := idParam(r, "conversationID")
		if err != nil {
			writeError(w, err)
			return
		}
		var req addParticipantRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			invalidJSON(w)
			return
		}

		conv, err := convSvc.AddParticipant(r.Context(), id, req.User, user)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, conv)
	}
}

// idParam parses a numeric URL parameter. A non-numeric id cannot reference
// any resource, so it maps to not-found rather than a validation error.
func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, domain.ErrNotFound
	}
	return id, nil
}
