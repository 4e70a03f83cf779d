package sample

import (
	"encoding/json"
	"net/http"
)

type envelope map[string]any

// writeJSON sends data as JSON with status.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// success sends 200: {"data": v}
func success(w http.ResponseWriter, v any) { writeJSON(w, http.StatusOK, envelope{"data": v}) }

// created sends 201: {"data": v}
func created(w http.ResponseWriter, v any) { writeJSON(w, http.StatusCreated, envelope{"data": v}) }

func noContent(w http.ResponseWriter) { w.WriteHeader(http.StatusNoContent) }

// fail sends {"message": message} with status.
func fail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{"message": message})
}

func notFound(w http.ResponseWriter) { fail(w, http.StatusNotFound, "Not found.") }

// invalid sends 422: {"message": first error, "errors": errs}
func invalid(w http.ResponseWriter, errs Errors) {
	writeJSON(w, http.StatusUnprocessableEntity, envelope{"message": errs.First(), "errors": errs})
}
