package server

import (
	"net/http"

	"github.com/jonathan/intelliconsult/internal/types"
)

// ---------------------------------------------------------------------
// Attendance Handlers
// ---------------------------------------------------------------------

func (s *Server) handleAddAttendance(w http.ResponseWriter, r *http.Request) {
	userID, err := s.pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.AddAttendanceRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	if _, err := s.users.requirePerson(ctx, userID); err != nil {
		s.writeError(w, r, err)
		return
	}

	rec, err := s.repo.GetAttendance(ctx, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if rec == nil {
		rec = &types.AttendanceRecord{UserID: userID, AttendanceSheet: []types.AttendanceEntry{}}
	}
	for _, e := range req.Entries {
		if e.DaysPresent == nil {
			e.DaysPresent = []types.DayMarker{}
		}
		rec.AttendanceSheet = append(rec.AttendanceSheet, e)
	}
	if err := s.repo.SaveAttendance(ctx, rec); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, rec)
}

func (s *Server) handleGetAttendance(w http.ResponseWriter, r *http.Request) {
	userID, err := s.pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rec, err := s.repo.GetAttendance(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if rec == nil {
		s.writeError(w, r, &ErrNotFound{Resource: "attendance record", ID: userID})
		return
	}

	s.jsonResponse(w, http.StatusOK, rec)
}

// handleUploadAttendance forwards an attendance sheet to the ML parser and
// returns its reply verbatim.
func (s *Server) handleUploadAttendance(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, &ErrValidation{Field: "file", Message: "no file uploaded"})
		return
	}
	defer file.Close()

	parsed, err := s.ml.ParseAttendanceSheet(r.Context(), header.Filename, file)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, parsed)
}

// ---------------------------------------------------------------------
// Hours Handlers
// ---------------------------------------------------------------------

func (s *Server) handleMonthlyHours(w http.ResponseWriter, r *http.Request) {
	userID, err := s.pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	monthly, err := s.hours.MonthlyHoursFor(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"userId":       userID,
		"monthlyHours": monthly,
	})
}

func (s *Server) handleAllMonthlyHours(w http.ResponseWriter, r *http.Request) {
	all, err := s.hours.MonthlyHoursForAll(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"monthlyHours": all})
}

func (s *Server) handleTotalHours(w http.ResponseWriter, r *http.Request) {
	userID, err := s.pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	totals, err := s.hours.TotalHoursFor(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, totals)
}
