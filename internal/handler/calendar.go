package handler

import "net/http"

// GetCalendar handles GET /calendar.
// It accepts the same query surface as GET /meetings and returns the
// filtered selection as an iCalendar document, so users can subscribe to
// a saved filter from a calendar app.
func (s *Server) GetCalendar(w http.ResponseWriter, r *http.Request) {
	in, err := filterInputFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	body, err := s.calendar.Export(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="meetings.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
