package routes

import (
	"net/http"

	"haven/haven/config"
	"haven/haven/controllers"
	"haven/haven/middlewares"

	"github.com/go-chi/chi/v5"
)

func ConversationRoutes(ctrl *controllers.ConversationsController, export *controllers.ExportController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Use(middlewares.StaffAuthMiddleware(cfg))

	r.Get("/", handleJSON(func(r *http.Request) (any, int, error) {
		list, err := ctrl.ListConversations(r.Context())
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
		return map[string]any{"conversations": list}, http.StatusOK, nil
	}))

	r.Get("/{id}", handleJSON(func(r *http.Request) (any, int, error) {
		id, err := conversationID(r)
		if err != nil {
			return nil, http.StatusNotFound, err
		}
		detail, err := ctrl.GetConversation(r.Context(), id)
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
		return detail, http.StatusOK, nil
	}))

	r.Get("/{id}/analysis", handleJSON(func(r *http.Request) (any, int, error) {
		id, err := conversationID(r)
		if err != nil {
			return nil, http.StatusNotFound, err
		}
		analysis, err := ctrl.AnalyzeConversation(r.Context(), id)
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
		return analysis, http.StatusOK, nil
	}))

	r.Post("/{id}/export", handleJSON(func(r *http.Request) (any, int, error) {
		id, err := conversationID(r)
		if err != nil {
			return nil, http.StatusNotFound, err
		}
		out, err := export.ExportConversation(r.Context(), id)
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
		return out, http.StatusCreated, nil
	}))
	return r
}
