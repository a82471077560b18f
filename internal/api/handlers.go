package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"hotelbook/internal/export"
	"hotelbook/internal/models"
	"hotelbook/internal/worker"

	"github.com/julienschmidt/httprouter"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body createBookingRequest
	if err := s.decodeBody(r, &body, false); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	req, err := body.toModel()
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	booking, err := s.bookings.CreateBooking(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := s.bookings.GetBooking(r.Context(), ps.ByName("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter, err := bookingFilterFromQuery(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	bookings, err := s.bookings.ListBookings(r.Context(), filter)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if bookings == nil {
		bookings = []*models.Booking{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) handleExportBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter, err := bookingFilterFromQuery(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	// An export covers every match unless the caller asks for fewer.
	if filter.Limit == 0 {
		filter.Limit = models.NoListLimit
	}

	bookings, err := s.bookings.ListBookings(r.Context(), filter)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	f, err := export.BookingsXLSX(bookings)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="bookings.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if err := f.Write(w); err != nil {
		s.logger.Error().Err(err).Msg("write bookings export")
	}
}

func (s *HTTPServer) handleUpdateBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body updateBookingRequest
	if err := s.decodeBody(r, &body, false); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	patch, err := body.toPatch()
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	booking, err := s.bookings.UpdateBooking(r.Context(), ps.ByName("id"), patch)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleConfirmBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := s.bookings.ConfirmBooking(r.Context(), ps.ByName("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleCompleteBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := s.bookings.CompleteBooking(r.Context(), ps.ByName("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleCancelBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body cancelBookingRequest
	if err := s.decodeBody(r, &body, true); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	booking, err := s.bookings.CancelBooking(r.Context(), ps.ByName("id"), strings.TrimSpace(body.CancellationReason))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	query := r.URL.Query()
	checkIn, err := parseDate("check_in", query.Get("check_in"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	checkOut, err := parseDate("check_out", query.Get("check_out"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	roomID := ps.ByName("id")
	if _, err := s.rooms.GetRoom(r.Context(), roomID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	available, err := s.bookings.CheckAvailability(r.Context(), roomID, checkIn, checkOut)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"room_id":   roomID,
		"check_in":  checkIn.Format(models.DateLayout),
		"check_out": checkOut.Format(models.DateLayout),
		"available": available,
	})
}

// handleListHotels searches when q or location is given.
func (s *HTTPServer) handleListHotels(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	text := strings.TrimSpace(query.Get("q"))
	location := strings.TrimSpace(query.Get("location"))

	var (
		hotels []*models.Hotel
		err    error
	)
	if text != "" || location != "" {
		hotels, err = s.rooms.SearchHotels(r.Context(), text, location)
	} else {
		hotels, err = s.rooms.ListHotels(r.Context())
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if hotels == nil {
		hotels = []*models.Hotel{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"hotels": hotels})
}

func (s *HTTPServer) handleCreateHotel(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body createHotelRequest
	if err := s.decodeBody(r, &body, false); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	hotel := body.toModel()
	if err := s.rooms.CreateHotel(r.Context(), hotel); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, hotel)
}

func (s *HTTPServer) handleGetHotel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	hotel, err := s.rooms.GetHotel(r.Context(), ps.ByName("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hotel)
}

func (s *HTTPServer) handleUpdateHotel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body updateHotelRequest
	if err := s.decodeBody(r, &body, false); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	hotel, err := s.rooms.UpdateHotel(r.Context(), ps.ByName("id"), body.toPatch())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hotel)
}

func (s *HTTPServer) handleDeleteHotel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := s.rooms.DeleteHotel(r.Context(), ps.ByName("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleAvailableRooms(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	query := r.URL.Query()
	checkIn, err := parseDate("check_in", query.Get("check_in"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	checkOut, err := parseDate("check_out", query.Get("check_out"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	rooms, err := s.bookings.FindAvailableRooms(r.Context(), ps.ByName("id"), checkIn, checkOut)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"hotel_id":  ps.ByName("id"),
		"check_in":  checkIn.Format(models.DateLayout),
		"check_out": checkOut.Format(models.DateLayout),
		"rooms":     rooms,
	})
}

func (s *HTTPServer) handleListRooms(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	rooms, err := s.rooms.ListRooms(r.Context(), strings.TrimSpace(r.URL.Query().Get("hotel_id")))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if rooms == nil {
		rooms = []*models.Room{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

func (s *HTTPServer) handleCreateRoom(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body createRoomRequest
	if err := s.decodeBody(r, &body, false); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	room := body.toModel()
	if err := s.rooms.CreateRoom(r.Context(), room); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

func (s *HTTPServer) handleGetRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	room, err := s.rooms.GetRoom(r.Context(), ps.ByName("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (s *HTTPServer) handleUpdateRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body updateRoomRequest
	if err := s.decodeBody(r, &body, false); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	room, err := s.rooms.UpdateRoom(r.Context(), ps.ByName("id"), body.toPatch())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (s *HTTPServer) handleUpdateRoomStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body roomStatusRequest
	if err := s.decodeBody(r, &body, false); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	room, err := s.rooms.UpdateRoomStatus(r.Context(), ps.ByName("id"), body.Status)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (s *HTTPServer) handleDeleteRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := s.rooms.DeleteRoom(r.Context(), ps.ByName("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleCreateUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body createUserRequest
	if err := s.decodeBody(r, &body, false); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	user := body.toModel()
	if err := s.rooms.CreateUser(r.Context(), user); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *HTTPServer) handleGetUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, err := s.rooms.GetUser(r.Context(), ps.ByName("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *HTTPServer) handleUpdateUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body updateUserRequest
	if err := s.decodeBody(r, &body, false); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	user, err := s.rooms.UpdateUser(r.Context(), ps.ByName("id"), body.toPatch())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *HTTPServer) handleDeleteUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := s.rooms.DeleteUser(r.Context(), ps.ByName("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleDeadLetters(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var limit int64
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			s.writeServiceError(w, r, fmt.Errorf("%w: invalid limit parameter: %s", errMalformed, raw))
			return
		}
		limit = n
	}

	letters := []worker.DeadLetter{}
	if s.deadLetters != nil {
		found, err := s.deadLetters.DeadLetters(r.Context(), limit)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if found != nil {
			letters = found
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"dead_letters": letters})
}

func bookingFilterFromQuery(r *http.Request) (models.BookingFilter, error) {
	query := r.URL.Query()
	filter := models.BookingFilter{
		UserID:  strings.TrimSpace(query.Get("user_id")),
		HotelID: strings.TrimSpace(query.Get("hotel_id")),
		RoomID:  strings.TrimSpace(query.Get("room_id")),
		Status:  strings.TrimSpace(query.Get("status")),
	}

	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return filter, fmt.Errorf("%w: invalid limit parameter: %s", errMalformed, raw)
		}
		filter.Limit = limit
	}
	return filter, nil
}
