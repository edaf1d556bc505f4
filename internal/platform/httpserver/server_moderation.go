package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"autoboard/contexts/marketplace/listing-service/domain/entities"
	listinghttp "autoboard/contexts/marketplace/listing-service/transport/http"
)

func (s *Server) handleModerationQueue(w http.ResponseWriter, r *http.Request, principal entities.Principal) {
	limit, ok := parseLimit(w, r.URL.Query().Get("limit"))
	if !ok {
		return
	}
	resp, err := s.listings.Handler.ModerationQueueHandler(r.Context(), principal, limit)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApproveListing(w http.ResponseWriter, r *http.Request, principal entities.Principal) {
	if err := s.listings.Handler.ApproveListingHandler(r.Context(), principal, r.PathValue("listing_id")); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listinghttp.ActionResponse{Success: true})
}

// handleRejectListing accepts an empty body; the reason is optional for a
// single rejection.
func (s *Server) handleRejectListing(w http.ResponseWriter, r *http.Request, principal entities.Principal) {
	var req listinghttp.RejectListingRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body could not be read", nil)
		return
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", nil)
			return
		}
	}
	if err := s.listings.Handler.RejectListingHandler(r.Context(), principal, r.PathValue("listing_id"), req); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listinghttp.ActionResponse{Success: true})
}

func (s *Server) handleBulkApprove(w http.ResponseWriter, r *http.Request, principal entities.Principal) {
	s.handleBulk(w, r, principal, true)
}

func (s *Server) handleBulkReject(w http.ResponseWriter, r *http.Request, principal entities.Principal) {
	s.handleBulk(w, r, principal, false)
}

func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request, principal entities.Principal, approve bool) {
	var req listinghttp.BulkModerationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.listings.Handler.BulkModerationHandler(r.Context(), principal, approve, req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request, principal entities.Principal) {
	query := r.URL.Query()
	limit, ok := parseLimit(w, query.Get("limit"))
	if !ok {
		return
	}
	resp, err := s.listings.Handler.ListAuditHandler(r.Context(), principal, query.Get("target_id"), limit)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
