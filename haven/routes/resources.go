// haven/routes/resources.go
package routes

import (
	"net/http"

	"haven/haven/controllers"

	"github.com/go-chi/chi/v5"
)

func ResourceRoutes(ctrl *controllers.ChatController) chi.Router {
	r := chi.NewRouter()
	r.Get("/", handleJSON(func(r *http.Request) (any, int, error) {
		return map[string]any{"resources": ctrl.Resources()}, http.StatusOK, nil
	}))
	return r
}
