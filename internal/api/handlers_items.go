package api

import (
	"net/http"

	"shareit/internal/dto"
)

func (s *HTTPServer) addItem(w http.ResponseWriter, r *http.Request) {
	ownerID, err := SharerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body dto.ItemDto
	if err := DecodeJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	item, err := s.svc.Items.AddItem(r.Context(), ownerID, body.ToModel())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, dto.ToItemDto(*item))
}

func (s *HTTPServer) updateItem(w http.ResponseWriter, r *http.Request) {
	ownerID, err := SharerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	itemID, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body dto.ItemPatchDto
	if err := DecodeJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	item, err := s.svc.Items.UpdateItem(r.Context(), ownerID, itemID, body.ToPatch())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, dto.ToItemDto(*item))
}

func (s *HTTPServer) getItem(w http.ResponseWriter, r *http.Request) {
	userID, err := SharerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	itemID, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	details, err := s.svc.Items.GetItem(r.Context(), itemID, userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, dto.ToItemDtoForOut(*details))
}

func (s *HTTPServer) ownerItems(w http.ResponseWriter, r *http.Request) {
	ownerID, err := SharerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	page, err := pageParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	list, err := s.svc.Items.GetOwnerItems(r.Context(), ownerID, page)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, dto.ToItemDtosForOut(list))
}

func (s *HTTPServer) searchItems(w http.ResponseWriter, r *http.Request) {
	page, err := pageParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	items, err := s.svc.Items.Search(r.Context(), r.URL.Query().Get("text"), page)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, dto.ToItemDtos(items))
}

func (s *HTTPServer) deleteItem(w http.ResponseWriter, r *http.Request) {
	ownerID, err := SharerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	itemID, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.svc.Items.DeleteItem(r.Context(), ownerID, itemID); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *HTTPServer) addComment(w http.ResponseWriter, r *http.Request) {
	authorID, err := SharerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	itemID, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body dto.CommentDto
	if err := DecodeJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	comment, err := s.svc.Items.AddComment(r.Context(), authorID, itemID, body.Text)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, dto.ToCommentDto(*comment))
}
