// Package response writes the storefront's JSON envelope:
//
//	{"status": 200, "message": "...", "data": ..., "errors": {...}}
//
// Handlers normally go through pkg/ctx; middleware that runs before a
// handler context exists calls these directly.
package response

import (
	"encoding/json"
	"net/http"
)

// Default messages. A 500 never carries anything but MsgInternal.
const (
	MsgInternal     = "Something went very wrong"
	MsgUnauthorized = "Please log in to continue"
	MsgForbidden    = "You are not allowed to do that"
	MsgNotFound     = "Page not found"
	MsgValidation   = "Please correct the highlighted fields"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Write sends env with env.Status as the HTTP status.
func Write(w http.ResponseWriter, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(env.Status)
	_ = json.NewEncoder(w).Encode(env)
}

func Success(w http.ResponseWriter, data interface{}) {
	Write(w, Envelope{Status: http.StatusOK, Data: data})
}

// Message is a 200 carrying a flash-style notice next to the data.
func Message(w http.ResponseWriter, message string, data interface{}) {
	Write(w, Envelope{Status: http.StatusOK, Message: message, Data: data})
}

func Created(w http.ResponseWriter, data interface{}) {
	Write(w, Envelope{Status: http.StatusCreated, Data: data})
}

func Error(w http.ResponseWriter, status int, message string) {
	Write(w, Envelope{Status: status, Message: message})
}

// ValidationError is a 422 with one message per json field name.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	Write(w, Envelope{Status: http.StatusUnprocessableEntity, Message: MsgValidation, Errors: errs})
}

func Unauthorized(w http.ResponseWriter) { Error(w, http.StatusUnauthorized, MsgUnauthorized) }
func Forbidden(w http.ResponseWriter)    { Error(w, http.StatusForbidden, MsgForbidden) }
func NotFound(w http.ResponseWriter)     { Error(w, http.StatusNotFound, MsgNotFound) }
