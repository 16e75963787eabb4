package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"maqraa/internal/audit"
	"maqraa/internal/booking"
	"maqraa/internal/metrics"
	"maqraa/internal/slots"
)

// handleSlots returns the catalog blocks and slots.
// GET /api/slots
func (s *HTTPServer) handleSlots(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("slots")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"blocks": s.catalog.Load().Blocks()})
}

// AvailabilityResponse is the snapshot returned by GET /api/availability.
type AvailabilityResponse struct {
	SeatSlots   []string         `json:"seat_slots"`
	DayBookings map[string][]int `json:"day_bookings"`
}

// handleAvailability returns the current booked set from the cache.
// GET /api/availability
func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	seats, days := s.cache.Snapshot()
	if seats == nil {
		seats = []string{}
	}
	writeJSON(w, http.StatusOK, AvailabilityResponse{SeatSlots: seats, DayBookings: days})
}

// CreateSelectionRequest starts a day-selection session for a form.
type CreateSelectionRequest struct {
	RequiredDays int `json:"required_days"`
}

// SelectionResponse reports the session state after a mutation.
type SelectionResponse struct {
	SessionID  string   `json:"session_id"`
	State      string   `json:"state"`
	Required   int      `json:"required"`
	ChosenDays []int    `json:"chosen_days"`
	DayNames   []string `json:"day_names"`
	Complete   bool     `json:"complete"`
}

func selectionResponse(id string, sel *booking.DaySelection) SelectionResponse {
	days := sel.Days()
	names := make([]string, 0, len(days))
	for _, d := range days {
		names = append(names, slots.WeekdayName(d))
	}
	return SelectionResponse{
		SessionID:  id,
		State:      string(sel.State()),
		Required:   sel.Required(),
		ChosenDays: days,
		DayNames:   names,
		Complete:   sel.Complete(),
	}
}

// handleCreateSelection creates a form session with a required day count.
// POST /api/selection
func (s *HTTPServer) handleCreateSelection(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("selection_create")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req CreateSelectionRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	session := s.sessions.Create()
	var resp SelectionResponse
	err := session.WithSelection(func(sel *booking.DaySelection) error {
		if err := sel.ChooseCount(req.RequiredDays); err != nil {
			return err
		}
		resp = selectionResponse(session.ID, sel)
		return nil
	})
	if err != nil {
		s.sessions.Delete(session.ID)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// ToggleDayRequest toggles one weekday in a session. Day accepts a
// canonical or localized day name.
type ToggleDayRequest struct {
	SessionID string `json:"session_id"`
	Day       string `json:"day"`
}

// handleToggleDay toggles a weekday in an existing selection.
// POST /api/selection/toggle
func (s *HTTPServer) handleToggleDay(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("selection_toggle")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ToggleDayRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	session := s.sessions.Get(req.SessionID)
	if session == nil {
		writeError(w, http.StatusNotFound, "unknown or expired session")
		return
	}

	day := slots.ParseWeekday(req.Day)
	if day == slots.InvalidWeekday {
		writeError(w, http.StatusBadRequest, "unknown day name")
		return
	}

	var resp SelectionResponse
	err := session.WithSelection(func(sel *booking.DaySelection) error {
		if err := sel.ToggleDay(day); err != nil {
			return err
		}
		resp = selectionResponse(session.ID, sel)
		return nil
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// SubmitRequest is the request body for POST /api/bookings.
type SubmitRequest struct {
	SessionID string `json:"session_id,omitempty"` // per-day submissions take days from the session
	SlotID    string `json:"slot_id"`
	Mode      string `json:"mode"` // "seat" or "perDay"
	SeatLabel string `json:"seat_label,omitempty"`
}

// handleSubmit performs the final reservation write.
// POST /api/bookings
func (s *HTTPServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req SubmitRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sel := booking.Selection{
		SlotID:    req.SlotID,
		Mode:      booking.Mode(req.Mode),
		SeatLabel: req.SeatLabel,
	}

	if sel.Mode == booking.ModePerDay {
		session := s.sessions.Get(req.SessionID)
		if session == nil {
			writeError(w, http.StatusNotFound, "unknown or expired session")
			return
		}
		err := session.WithSelection(func(ds *booking.DaySelection) error {
			if err := ds.Validate(); err != nil {
				return err
			}
			sel.Weekdays = ds.Days()
			return nil
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	conf, err := s.submitter.Submit(r.Context(), sel)
	if err != nil {
		s.writeSubmitError(w, err)
		return
	}

	// Form done; the session is discarded on submit.
	if req.SessionID != "" {
		s.sessions.Delete(req.SessionID)
	}

	writeJSON(w, http.StatusCreated, conf)
}

func (s *HTTPServer) writeSubmitError(w http.ResponseWriter, err error) {
	var conflict *booking.ConflictError
	var invalid *booking.ValidationError
	var storeErr *booking.StoreError

	switch {
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":         conflict.Error(),
			"conflict_days": conflict.Days,
		})
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, invalid.Error())
	case errors.As(err, &storeErr):
		s.log.Error().Err(storeErr).Msg("booking store failure")
		writeError(w, http.StatusServiceUnavailable, "booking store unavailable, try again")
	default:
		s.log.Error().Err(err).Msg("booking submit failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// handleExport streams the reservation overview as an .xlsx attachment.
// GET /api/export
func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("export")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	seats, days := s.cache.Snapshot()
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="reservations.xlsx"`)

	if err := audit.WriteReservations(w, s.catalog.Load(), seats, days); err != nil {
		s.log.Error().Err(err).Msg("reservation export failed")
	}
}
