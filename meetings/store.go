// Package meetings maintains the client-side working set of meeting
// records and enforces the local preconditions for mutating them. The
// backend stays authoritative: the set is replaced wholesale on every
// list and only shrinks after the backend acknowledges a delete.
package meetings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/VyankateshKulkarni13/meetborg/client"
	"github.com/VyankateshKulkarni13/meetborg/detect"
	mberrors "github.com/VyankateshKulkarni13/meetborg/pkg/errors"
	"github.com/VyankateshKulkarni13/meetborg/pkg/logging"
)

// ErrUpdateNotAvailable is returned by Update. Editing scheduled meetings
// is not offered; operators delete and recreate instead.
var ErrUpdateNotAvailable = errors.New("meeting update is not yet available, delete and recreate instead")

// Draft is the operator's input for a new meeting.
type Draft struct {
	URL             string
	Title           string
	ScheduledTime   *time.Time
	DurationMinutes int
	Purpose         string
}

// Options configures a Store.
type Options struct {
	Logger logging.Logger
}

// Store is the in-memory working set of meetings for the active status
// filter, backed by the meetings API.
type Store struct {
	api *client.Client
	log logging.Logger

	mu     sync.Mutex
	filter client.MeetingStatus
	items  []client.Meeting
	total  int
}

// NewStore returns a Store backed by api.
func NewStore(api *client.Client, opts *Options) *Store {
	if opts == nil {
		opts = &Options{}
	}
	log := opts.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Store{api: api, log: log}
}

// List fetches meetings matching filter and replaces the working set with
// the response. An empty filter means all statuses. The set is untouched
// when the fetch fails.
func (s *Store) List(ctx context.Context, filter client.MeetingStatus, skip, limit int) ([]client.Meeting, error) {
	resp, err := s.api.ListMeetings(ctx, &client.MeetingListParams{
		StatusFilter: filter,
		Skip:         skip,
		Limit:        limit,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.filter = filter
	s.items = resp.Meetings
	s.total = resp.Total
	s.mu.Unlock()

	s.log.Debug("replaced meeting working set",
		logging.F("count", len(resp.Meetings)),
		logging.F("total", resp.Total),
		logging.F("filter", string(filter)))
	return s.snapshot(), nil
}

// Get fetches a single meeting from the backend. It does not touch the
// working set; single-record reads never go stale against it.
func (s *Store) Get(ctx context.Context, id string) (*client.Meeting, error) {
	return s.api.GetMeeting(ctx, id)
}

// Create validates the draft locally, then creates the meeting and appends
// it to the working set. A missing title or an input the classifier could
// not resolve to a supported platform is rejected before any network call.
func (s *Store) Create(ctx context.Context, draft *Draft, detection *detect.Result) (*client.Meeting, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", mberrors.ErrLocalPrecondition)
	}
	if detection == nil || !detection.Valid {
		return nil, fmt.Errorf("%w: URL did not resolve to a supported platform", mberrors.ErrLocalPrecondition)
	}

	meeting, err := s.api.CreateMeeting(ctx, &client.MeetingCreateRequest{
		URL:             draft.URL,
		Title:           draft.Title,
		ScheduledTime:   draft.ScheduledTime,
		DurationMinutes: draft.DurationMinutes,
		Purpose:         draft.Purpose,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.matchesFilterLocked(meeting.Status) {
		s.items = append(s.items, *meeting)
		s.total++
	}
	s.mu.Unlock()
	return meeting, nil
}

// Update is intentionally not implemented.
func (s *Store) Update(ctx context.Context, id string, patch *client.MeetingUpdateRequest) (*client.Meeting, error) {
	return nil, ErrUpdateNotAvailable
}

// Delete removes the meeting on the backend, then drops it from the
// working set. The set is unchanged when the backend refuses.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.api.DeleteMeeting(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	for i, m := range s.items {
		if m.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.total--
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// TriggerJoin asks the backend to send a bot into the meeting. A terminal
// meeting is rejected before the join call: from the working set when the
// id is known, otherwise by fetching the record first. Any non-terminal
// state is the backend's call. On success the working set is refreshed so
// the operator sees the status the join moved the meeting into.
func (s *Store) TriggerJoin(ctx context.Context, id string) (*client.JoinResponse, error) {
	s.mu.Lock()
	filter := s.filter
	var status client.MeetingStatus
	known := false
	for _, m := range s.items {
		if m.ID == id {
			status = m.Status
			known = true
			break
		}
	}
	s.mu.Unlock()

	if !known {
		meeting, err := s.api.GetMeeting(ctx, id)
		if err != nil {
			return nil, err
		}
		status = meeting.Status
	}
	if status.IsTerminal() {
		return nil, fmt.Errorf("%w: meeting is %s, join is only possible before it finishes",
			mberrors.ErrLocalPrecondition, status)
	}

	resp, err := s.api.TriggerJoin(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.List(ctx, filter, 0, 0); err != nil {
		// The join itself succeeded; a stale set is tolerable.
		s.log.Debug("working set refresh after join failed", logging.Err(err))
	}
	return resp, nil
}

// Meetings returns a copy of the working set.
func (s *Store) Meetings() []client.Meeting {
	return s.snapshot()
}

// Total returns the backend's total for the active filter, which can
// exceed the working set when the list was paginated.
func (s *Store) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *Store) snapshot() []client.Meeting {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]client.Meeting, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) matchesFilterLocked(status client.MeetingStatus) bool {
	return s.filter == "" || s.filter == status
}
