package httpserver

import (
	"net/http"

	"chatapi/internal/pagination"
	"chatapi/internal/service"
)

// @Summary      List users
// @Description  Paginated list of active users, for participant discovery
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  pagination.Page
// @Router       /users [get]
func handleListUsers(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pagination.ParseParams(r.URL.Query())
		if err != nil {
			writeError(w, err)
			return
		}
		users, count, err := userSvc.List(r.Context(), params.Offset(), params.Limit())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pagination.NewPage(users, count, params, r.URL))
	}
}

func handleGetUser(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "userID")
		if err != nil {
			writeError(w, err)
			return
		}
		user, err := userSvc.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func handleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, CurrentUser(r))
	}
}
