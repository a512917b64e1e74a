package http

import (
	"encoding/json"
	"net/http"
)

// HandleHealth is a liveness probe endpoint.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
