package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"santodinheiro/models"
	"santodinheiro/services"
)

// ReorderItems persists a drag-and-drop ordering for one category. The body
// lists every item id in its new position; the batch is all-or-nothing.
func ReorderItems(w http.ResponseWriter, r *http.Request) {
	owner := resolveOwner(w, r, models.PermissionWrite)
	if owner == "" {
		return
	}

	year, month, err := monthParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var body struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(body.IDs) == 0 {
		http.Error(w, "ids is required", http.StatusBadRequest)
		return
	}

	kind := mux.Vars(r)["kind"]
	if err := services.ReorderItems(owner, year, month, kind, body.IDs); err != nil {
		serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
