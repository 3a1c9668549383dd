package api

import (
	"context"
	"net/http"
	"strconv"

	"shareit/internal/domain"
	"shareit/internal/dto"
	"shareit/internal/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *HTTPServer) addBooking(w http.ResponseWriter, r *http.Request) {
	bookerID, err := SharerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body dto.BookingInput
	if err := DecodeJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	if body.ItemID == nil || body.Start == nil || body.End == nil {
		s.fail(w, r, domain.Errorf(domain.ErrValidation, "itemId, start and end are required"))
		return
	}
	booking, err := s.svc.Bookings.AddBooking(r.Context(), bookerID, *body.ItemID, body.Start.Time, body.End.Time)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, dto.ToBookingDto(*booking))
}

func (s *HTTPServer) approveBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := SharerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	bookingID, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	raw := r.URL.Query().Get("approved")
	approved, err := strconv.ParseBool(raw)
	if err != nil {
		s.fail(w, r, domain.Errorf(domain.ErrValidation, "approved must be true or false, got %q", raw))
		return
	}
	booking, err := s.svc.Bookings.Approve(r.Context(), bookingID, approved, userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, dto.ToBookingDto(*booking))
}

func (s *HTTPServer) getBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := SharerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	bookingID, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	booking, err := s.svc.Bookings.GetBooking(r.Context(), bookingID, userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, dto.ToBookingDto(*booking))
}

func (s *HTTPServer) userBookings(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, s.svc.Bookings.ListForUser)
}

func (s *HTTPServer) ownerBookings(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, s.svc.Bookings.ListForOwner)
}

type bookingLister func(ctx context.Context, userID int64, state string, page models.Page) ([]models.Booking, error)

func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request, list bookingLister) {
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
	bookings, err := list(r.Context(), userID, r.URL.Query().Get("state"), page)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, dto.ToBookingDtos(bookings))
}

func (s *HTTPServer) exportOwnerBookings(w http.ResponseWriter, r *http.Request) {
	ownerID, err := SharerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	raw, err := s.svc.Bookings.ExportForOwner(r.Context(), ownerID, r.URL.Query().Get("state"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="bookings.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}
