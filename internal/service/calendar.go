package service

import (
	"context"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/meetingguide/backend/internal/domain"
)

// MeetingFilterer is the slice of DirectoryService the calendar export
// depends on.
type MeetingFilterer interface {
	Filter(ctx context.Context, in domain.FilterInput) (domain.FilterResult, error)
}

// CalendarService renders a filtered selection of meetings as an
// iCalendar document with weekly recurrence rules, so a user can
// subscribe to "Tuesday evening meetings in Midtown" from a calendar app.
type CalendarService struct {
	directory MeetingFilterer
}

// NewCalendarService constructs a CalendarService over the given directory.
func NewCalendarService(directory MeetingFilterer) *CalendarService {
	return &CalendarService{directory: directory}
}

// bydayCodes maps time.Weekday to the RRULE BYDAY token.
var bydayCodes = [7]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

// Export evaluates the query and serializes the passing meetings as ICS.
// Meetings without a schedule are skipped; they have no instant to file
// an event under.
func (s *CalendarService) Export(ctx context.Context, in domain.FilterInput) (string, error) {
	result, err := s.directory.Filter(ctx, in)
	if err != nil {
		return "", fmt.Errorf("service.CalendarService.Export: %w", err)
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)

	stamp := time.Now().UTC()
	for _, m := range result.Meetings {
		if m.Start == nil || m.End == nil {
			continue
		}

		event := cal.AddEvent(m.Slug + "@meeting-guide")
		event.SetDtStampTime(stamp)
		event.SetStartAt(*m.Start)
		event.SetEndAt(*m.End)
		event.SetSummary(m.Name)
		event.AddRrule(fmt.Sprintf("FREQ=WEEKLY;BYDAY=%s", bydayCodes[*m.Day]))

		switch {
		case m.IsInPerson && m.FormattedAddress != "":
			event.SetLocation(m.FormattedAddress)
		case m.IsOnline && m.ConferenceURL != "":
			event.SetLocation(m.ConferenceURL)
		}
		if m.ConferenceURL != "" {
			event.SetURL(m.ConferenceURL)
		}
		if m.Notes != "" {
			event.SetDescription(m.Notes)
		}
	}

	return cal.Serialize(), nil
}
