// Package service contains the business logic for the Meeting Guide API:
// the load lifecycle of the data set and the filter evaluator that turns
// a FilterInput into an ordered selection of meetings. Services hold no
// HTTP concerns; handlers depend on them through interfaces.
package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/meetingguide/backend/internal/config"
	"github.com/meetingguide/backend/internal/domain"
	"github.com/meetingguide/backend/internal/repo"
	"github.com/meetingguide/backend/internal/source"
)

// RowFetcher is the slice of the source package the service needs.
// Defined here so tests can feed rows without a network.
type RowFetcher interface {
	Fetch(ctx context.Context, url string) ([]source.RawRow, error)
}

// DirectoryService owns the loaded data set and answers filter queries
// against it. One load runs to completion before any query is answered; a
// failed load parks the service in an error state every query reports
// until a later Load succeeds.
type DirectoryService struct {
	fetcher   RowFetcher
	sourceURL string
	settings  config.Settings
	timezone  string

	// now is the clock; injectable for tests.
	now func() time.Time

	mu      sync.RWMutex
	data    *repo.Dataset
	loadErr error

	// Distance side table, memoized on the reference point so repeated
	// queries at the same point skip the trigonometry. Guarded by mu.
	refLat, refLng float64
	hasRef         bool
	distances      map[string]float64
	distanceIndex  []domain.IndexEntry
}

// NewDirectoryService constructs a DirectoryService. Call Load before
// Filter; until then every query reports domain.ErrNoData.
func NewDirectoryService(fetcher RowFetcher, sourceURL, timezone string, settings config.Settings) *DirectoryService {
	return &DirectoryService{
		fetcher:   fetcher,
		sourceURL: sourceURL,
		settings:  settings,
		timezone:  timezone,
		now:       time.Now,
	}
}

// SetClock replaces the service clock. Test hook.
func (s *DirectoryService) SetClock(now func() time.Time) {
	s.now = now
}

// Load fetches the source and rebuilds the whole data set: normalize,
// derive, index, capabilities. On failure the previous data set (if any)
// is kept and the error is retained for queries to surface. Safe to call
// again for a scheduled full refresh.
func (s *DirectoryService) Load(ctx context.Context) error {
	rows, err := s.fetcher.Fetch(ctx, s.sourceURL)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.loadErr = err
		return fmt.Errorf("service.DirectoryService.Load: %w", err)
	}

	s.data = repo.Build(rows, s.settings, s.timezone, s.now())
	s.loadErr = nil
	// A new data set invalidates the distance memo: slugs and coordinates
	// may have changed under the same reference point.
	s.hasRef = false
	s.distances = nil
	s.distanceIndex = nil
	return nil
}

// Capabilities returns the loaded data set's capabilities.
func (s *DirectoryService) Capabilities(ctx context.Context) (domain.Capabilities, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.gateLocked(); err != nil {
		return domain.Capabilities{}, fmt.Errorf("service.DirectoryService.Capabilities: %w", err)
	}
	return s.data.Capabilities, nil
}

// Indexes returns the stable facet indexes plus, when a reference point
// has been seen, the current distance index.
func (s *DirectoryService) Indexes(ctx context.Context) (domain.Indexes, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.gateLocked(); err != nil {
		return domain.Indexes{}, fmt.Errorf("service.DirectoryService.Indexes: %w", err)
	}
	ix := s.data.Indexes
	ix.Distance = s.distanceIndex
	return ix, nil
}

// Meeting returns one record by slug.
// Returns domain.ErrNotFound for a slug not in the data set.
func (s *DirectoryService) Meeting(ctx context.Context, slug string) (domain.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.gateLocked(); err != nil {
		return domain.Meeting{}, fmt.Errorf("service.DirectoryService.Meeting: %w", err)
	}
	m, err := s.data.Get(slug)
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("service.DirectoryService.Meeting: %w", err)
	}
	return m, nil
}

// Filter evaluates one query: capability-gated facet selections (OR within
// a facet, AND across facets), free-text search in search mode, distance
// gating and ascending distance order in location/me modes. Absent all of
// those the result preserves load order. A selection naming a facet value
// no longer in the index contributes an empty match set: a stale deep link
// degrades to no results, never an error.
func (s *DirectoryService) Filter(ctx context.Context, in domain.FilterInput) (domain.FilterResult, error) {
	if err := validateInput(in); err != nil {
		return domain.FilterResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.gateLocked(); err != nil {
		return domain.FilterResult{}, fmt.Errorf("service.DirectoryService.Filter: %w", err)
	}

	now := s.now()

	// Slug selection bypasses filtering entirely: a shared meeting link
	// works no matter what stale facet state rides along in the URL.
	if in.Meeting != "" {
		m, err := s.data.Get(in.Meeting)
		if err != nil {
			return domain.FilterResult{}, fmt.Errorf("service.DirectoryService.Filter: %w", err)
		}
		return s.resultLocked([]string{m.Slug}, nil, now), nil
	}

	mode := in.EffectiveMode()

	// Reference point handling: only location/me modes measure distance.
	var distances map[string]float64
	capabilities := s.data.Capabilities
	if mode == domain.ModeLocation || mode == domain.ModeMe {
		if lat, lng, ok := in.ReferencePoint(); ok && capabilities.Coordinates {
			distances = s.distancesLocked(lat, lng)
			capabilities.Distance = true
		}
	}

	passing := s.evaluateLocked(in, capabilities, mode)

	if mode == domain.ModeLocation || mode == domain.ModeMe {
		if distances != nil {
			// Records without coordinates cannot be "near" anything.
			kept := passing[:0]
			for _, slug := range passing {
				if _, ok := distances[slug]; ok {
					kept = append(kept, slug)
				}
			}
			passing = kept
			sort.SliceStable(passing, func(i, j int) bool {
				return distances[passing[i]] < distances[passing[j]]
			})
		}
	}

	return s.resultLocked(passing, distances, now), nil
}

// evaluateLocked applies the conjunctive-then-disjunctive facet algebra
// and the free-text predicate, returning passing slugs in load order.
func (s *DirectoryService) evaluateLocked(in domain.FilterInput, capabilities domain.Capabilities, mode string) []string {
	ix := s.data.Indexes
	ix.Distance = s.distanceIndex

	// One union per active facet, then intersect across facets.
	var intersected map[string]bool
	for _, facet := range domain.Facets {
		selection := compact(in.Selection(facet))
		if len(selection) == 0 {
			continue
		}
		// Capability gating: a facet the data set cannot support is inert
		// regardless of stray selection state.
		if !capabilities.Enabled(facet) {
			continue
		}

		union := map[string]bool{}
		for _, value := range selection {
			for _, slug := range ix.Lookup(facet, value) {
				union[slug] = true
			}
		}

		if intersected == nil {
			intersected = union
			continue
		}
		for slug := range intersected {
			if !union[slug] {
				delete(intersected, slug)
			}
		}
	}

	search := strings.ToLower(strings.TrimSpace(in.Search))
	textMatch := mode == domain.ModeSearch && search != ""

	passing := make([]string, 0, len(s.data.Slugs))
	for _, slug := range s.data.Slugs {
		if intersected != nil && !intersected[slug] {
			continue
		}
		if textMatch && !strings.Contains(s.data.Meetings[slug].Search, search) {
			continue
		}
		passing = append(passing, slug)
	}
	return passing
}

// distancesLocked returns the distance side table for the given reference
// point, recomputing only when the point actually changed.
func (s *DirectoryService) distancesLocked(lat, lng float64) map[string]float64 {
	if s.hasRef && s.refLat == lat && s.refLng == lng {
		return s.distances
	}

	distances := make(map[string]float64, len(s.data.Slugs))
	for _, slug := range s.data.Slugs {
		if d := repo.Distance(lat, lng, s.data.Meetings[slug], s.settings.DistanceUnit); d != nil {
			distances[slug] = *d
		}
	}

	s.refLat, s.refLng, s.hasRef = lat, lng, true
	s.distances = distances
	s.distanceIndex = repo.BuildDistanceIndex(s.data.Slugs, distances, s.settings)
	return distances
}

// resultLocked packages a slug selection with its side tables. The
// active-now flags are evaluated here, against the query's clock instant,
// so they track wall time without ever touching the stored records.
func (s *DirectoryService) resultLocked(slugs []string, distances map[string]float64, now time.Time) domain.FilterResult {
	res := domain.FilterResult{
		Slugs:    slugs,
		Meetings: make([]domain.Meeting, 0, len(slugs)),
		Active:   make(map[string]bool, len(slugs)),
	}
	for _, slug := range slugs {
		m := s.data.Meetings[slug]
		res.Meetings = append(res.Meetings, m)
		res.Active[slug] = repo.ActiveAt(m, now)
	}
	if distances != nil {
		res.Distances = make(map[string]float64, len(slugs))
		for _, slug := range slugs {
			if d, ok := distances[slug]; ok {
				res.Distances[slug] = d
			}
		}
	}
	if len(slugs) == 0 && len(s.data.Slugs) > 0 {
		res.Alert = domain.AlertNoResults
	}
	return res
}

// gateLocked enforces the load gate: no filtering before the one-shot
// load settles, and a settled failure is surfaced on every call.
func (s *DirectoryService) gateLocked() error {
	if s.loadErr != nil {
		return s.loadErr
	}
	if s.data == nil {
		return domain.ErrNoData
	}
	return nil
}

// validateInput rejects queries that are malformed rather than merely
// unsatisfiable. Stale facet values are fine (they match nothing); an
// unknown mode or an off-planet reference point is a caller bug.
func validateInput(in domain.FilterInput) error {
	switch in.EffectiveMode() {
	case domain.ModeSearch, domain.ModeLocation, domain.ModeMe:
	default:
		return fmt.Errorf("%w: unknown mode %q", domain.ErrValidation, in.Mode)
	}
	if lat, lng, ok := in.ReferencePoint(); ok {
		if lat < -90 || lat > 90 {
			return fmt.Errorf("%w: latitude %s out of range", domain.ErrValidation, strconv.FormatFloat(lat, 'f', -1, 64))
		}
		if lng < -180 || lng > 180 {
			return fmt.Errorf("%w: longitude %s out of range", domain.ErrValidation, strconv.FormatFloat(lng, 'f', -1, 64))
		}
	}
	return nil
}

// compact drops empty strings from a selection so ?type= in a URL does
// not count as an active facet.
func compact(values []string) []string {
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
