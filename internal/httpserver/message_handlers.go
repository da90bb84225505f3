package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"chatapi/internal/pagination"
	"chatapi/internal/query"
	"chatapi/internal/service"
)

type messageCreateRequest struct {
	Conversation int64  `json:"conversation"`
	Content      string `json:"content"`
	MessageType  string `json:"message_type"`
}

type messageUpdateRequest struct {
	Content     *string `json:"content"`
	MessageType *string `json:"message_type"`
}

// @Summary      List messages
// @Description  Paginated, filtered list of messages in the requester's conversations
// @Tags         messages
// @Security     BearerAuth
// @Produce      json
// @Param        content          query string false "substring match on content"
// @Param        date_after       query string false "inclusive lower bound on creation time"
// @Param        date_before      query string false "inclusive upper bound on creation time"
// @Param        user_username    query string false "substring match on sender username"
// @Param        conversation     query int    false "exact conversation id"
// @Param        search           query string false "term matched across content, sender and title"
// @Param        ordering         query string false "sort field, '-' prefix for descending"
// @Param        recent           query bool   false "restrict to the last 24 hours"
// @Param        mine             query bool   false "restrict to own messages"
// @Success      200  {object}  pagination.Page
// @Failure      400  {object}  map[string][]string
// @Router       /messages [get]
func handleListMessages(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		params, err := pagination.ParseParams(r.URL.Query())
		if err != nil {
			writeError(w, err)
			return
		}
		q, err := query.ParseMessageQuery(r.URL.Query(), user.ID, time.Now().UTC())
		if err != nil {
			writeError(w, err)
			return
		}

		msgs, count, err := msgSvc.List(r.Context(), user, q, params.Offset(), params.Limit())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pagination.NewPage(msgs, count, params, r.URL))
	}
}

// @Summary      Post a message
// @Description  Post into a conversation the requester participates in; the sender is always the requester
// @Tags         messages
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Success      201  {object}  domain.Message
// @Failure      400  {object}  map[string][]string
// @Failure      404  {object}  map[string]string
// @Router       /messages [post]
func handleCreateMessage(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		var req messageCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			invalidJSON(w)
			return
		}

		msg, err := msgSvc.Create(r.Context(), service.MessageCreateInput{
			ConversationID: req.Conversation,
			Content:        req.Content,
			MessageType:    req.MessageType,
		}, user)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, msg)
	}
}

// @Summary      Get a message
// @Tags         messages
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  domain.Message
// @Failure      404  {object}  map[string]string
// @Router       /messages/{messageID} [get]
func handleGetMessage(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		id, err := idParam(r, "messageID")
		if err != nil {
			writeError(w, err)
			return
		}
		msg, err := msgSvc.Get(r.Context(), id, user)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, msg)
	}
}

// @Summary      Update a message
// @Description  Partial update; only the sender may update, sender and creation time are immutable
// @Tags         messages
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Success      200  {object}  domain.Message
// @Failure      400  {object}  map[string][]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /messages/{messageID} [patch]
func handleUpdateMessage(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		id, err := idParam(r, "messageID")
		if err != nil {
			writeError(w, err)
			return
		}
		var req messageUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			invalidJSON(w)
			return
		}

		msg, err := msgSvc.Update(r.Context(), id, service.MessageUpdateInput{
			Content:     req.Content,
			MessageType: req.MessageType,
		}, user)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, msg)
	}
}

// @Summary      Delete a message
// @Description  Only the sender may delete; deletion is immediate and irreversible
// @Tags         messages
// @Security     BearerAuth
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /messages/{messageID} [delete]
func handleDeleteMessage(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		id, err := idParam(r, "messageID")
		if err != nil {
			writeError(w, err)
			return
		}
		if err := msgSvc.Delete(r.Context(), id, user); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
