// Package jsonrpc exposes the offering engine over HTTP JSON-RPC.
// Operation rejections travel inside the result body as offering result
// codes; JSON-RPC errors are reserved for protocol-level failures.
package jsonrpc

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Server represents a JSON-RPC server.
type Server struct {
	handler *OfferingHandler
}

// NewServer creates a new JSON-RPC server instance.
func NewServer(handler *OfferingHandler) *Server {
	return &Server{handler: handler}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, nil, codeParseError, "Parse error", nil)
		return
	}

	result, err := s.handler.Handle(req.Method, req.Params)
	if err != nil {
		code := codeInternalError
		switch {
		case errors.Is(err, errMethodNotFound):
			code = codeMethodNotFound
		case errors.Is(err, errInvalidParams):
			code = codeInvalidParams
		}
		writeError(w, req.ID, code, err.Error(), nil)
		return
	}

	writeJSON(w, Response{JsonRPC: "2.0", Result: result, ID: req.ID})
}

func writeError(w http.ResponseWriter, id interface{}, code int, message string, data interface{}) {
	writeJSON(w, Response{
		JsonRPC: "2.0",
		Error:   &Error{Code: code, Message: message, Data: data},
		ID:      id,
	})
}

func writeJSON(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
