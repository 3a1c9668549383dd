package api

import (
	"net/http"

	"shareit/internal/dto"
)

func (s *HTTPServer) addRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := SharerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body dto.ItemRequestInput
	if err := DecodeJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	details, err := s.svc.Requests.AddRequest(r.Context(), userID, body.ToModel())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, dto.ToItemRequestDto(*details))
}

func (s *HTTPServer) ownRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := SharerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	list, err := s.svc.Requests.GetAllOwn(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, dto.ToItemRequestDtos(list))
}

func (s *HTTPServer) allRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := SharerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	page, err := pageParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	list, err := s.svc.Requests.GetAllPaging(r.Context(), userID, page)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, dto.ToItemRequestDtos(list))
}

func (s *HTTPServer) getRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := SharerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	requestID, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	details, err := s.svc.Requests.GetByID(r.Context(), userID, requestID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, dto.ToItemRequestDto(*details))
}
