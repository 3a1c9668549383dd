package api

import (
	"net/http"

	"shareit/internal/dto"
)

func (s *HTTPServer) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.Users.GetAll(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, dto.ToUserDtos(users))
}

func (s *HTTPServer) createUser(w http.ResponseWriter, r *http.Request) {
	var body dto.UserDto
	if err := DecodeJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	user, err := s.svc.Users.Create(r.Context(), body.ToModel())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, dto.ToUserDto(*user))
}

func (s *HTTPServer) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	user, err := s.svc.Users.GetByID(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, dto.ToUserDto(*user))
}

func (s *HTTPServer) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body dto.UserPatchDto
	if err := DecodeJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	user, err := s.svc.Users.Update(r.Context(), id, body.ToPatch())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, dto.ToUserDto(*user))
}

func (s *HTTPServer) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.svc.Users.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
