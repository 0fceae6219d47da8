// Package handler implements the HTTP handlers for the Meeting Guide API.
// All handlers are methods on Server. Methods are split into
// domain-specific files (health.go, meetings.go, calendar.go) but all
// share the same Server struct so they can access its dependencies.
package handler

import (
	"context"

	"github.com/go-chi/chi/v5"

	"github.com/meetingguide/backend/internal/domain"
)

// DirectoryServicer defines the directory operations the handlers depend
// on. Defining the interface here (in the consumer package) follows the
// Go convention: "accept interfaces, return concrete types". It lets
// handler tests inject a mock without loading a data set.
type DirectoryServicer interface {
	Filter(ctx context.Context, in domain.FilterInput) (domain.FilterResult, error)
	Meeting(ctx context.Context, slug string) (domain.Meeting, error)
	Capabilities(ctx context.Context) (domain.Capabilities, error)
	Indexes(ctx context.Context) (domain.Indexes, error)
}

// CalendarServicer defines the ICS export operation the handlers depend on.
type CalendarServicer interface {
	Export(ctx context.Context, in domain.FilterInput) (string, error)
}

// Server holds the handler dependencies for all API endpoints.
type Server struct {
	directory DirectoryServicer
	calendar  CalendarServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(directory DirectoryServicer, calendar CalendarServicer) *Server {
	return &Server{directory: directory, calendar: calendar}
}

// Routes returns the chi router for the full API surface.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/meetings", s.ListMeetings)
	r.Get("/meetings/{slug}", s.GetMeeting)
	r.Get("/capabilities", s.GetCapabilities)
	r.Get("/indexes", s.GetIndexes)
	r.Get("/calendar", s.GetCalendar)
	return r
}
