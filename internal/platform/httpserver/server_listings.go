package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"autoboard/contexts/marketplace/listing-service/domain/entities"
	listinghttp "autoboard/contexts/marketplace/listing-service/transport/http"
)

func (s *Server) handleSubmitListing(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.optionalPrincipal(w, r)
	if !ok {
		return
	}
	var req listinghttp.SubmitListingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.listings.Handler.SubmitListingHandler(r.Context(), principal, req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListListings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, ok := parseLimit(w, query.Get("limit"))
	if !ok {
		return
	}
	resp, err := s.listings.Handler.ListListingsHandler(r.Context(), listinghttp.ListListingsRequest{
		Brand: query.Get("brand"),
		Model: query.Get("model"),
		Limit: limit,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	resp, err := s.listings.Handler.GetListingHandler(r.Context(), r.PathValue("listing_id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateListing(w http.ResponseWriter, r *http.Request, principal entities.Principal) {
	var req listinghttp.UpdateListingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.listings.Handler.UpdateListingHandler(r.Context(), principal, r.PathValue("listing_id"), req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteListing(w http.ResponseWriter, r *http.Request, principal entities.Principal) {
	if err := s.listings.Handler.DeleteListingHandler(r.Context(), principal, r.PathValue("listing_id")); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResendVerification(w http.ResponseWriter, r *http.Request) {
	resp, err := s.listings.Handler.ResendVerificationHandler(r.Context(), r.PathValue("listing_id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (s *Server) handleConfirmVerification(w http.ResponseWriter, r *http.Request) {
	var req listinghttp.ConfirmVerificationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.listings.Handler.ConfirmVerificationHandler(r.Context(), r.PathValue("listing_id"), req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request, principal entities.Principal) {
	if err := s.listings.Handler.AddFavoriteHandler(r.Context(), principal, r.PathValue("listing_id")); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request, principal entities.Principal) {
	if err := s.listings.Handler.RemoveFavoriteHandler(r.Context(), principal, r.PathValue("listing_id")); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMyListings(w http.ResponseWriter, r *http.Request, principal entities.Principal) {
	resp, err := s.listings.Handler.ListMyListingsHandler(r.Context(), principal)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMyQuota(w http.ResponseWriter, r *http.Request, principal entities.Principal) {
	resp, err := s.listings.Handler.MyQuotaHandler(r.Context(), principal)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request, principal entities.Principal) {
	query := r.URL.Query()
	limit, ok := parseLimit(w, query.Get("limit"))
	if !ok {
		return
	}
	unreadOnly := false
	if raw := query.Get("unread"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_unread", "unread must be a boolean", nil)
			return
		}
		unreadOnly = parsed
	}
	resp, err := s.listings.Handler.ListNotificationsHandler(r.Context(), principal, unreadOnly, limit)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request, principal entities.Principal) {
	if err := s.listings.Handler.MarkNotificationReadHandler(r.Context(), principal, r.PathValue("notification_id")); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMarkAllNotificationsRead(w http.ResponseWriter, r *http.Request, principal entities.Principal) {
	resp, err := s.listings.Handler.MarkAllNotificationsReadHandler(r.Context(), principal)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, into any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(into); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", nil)
		return false
	}
	return true
}

func parseLimit(w http.ResponseWriter, raw string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer", nil)
		return 0, false
	}
	return limit, true
}
