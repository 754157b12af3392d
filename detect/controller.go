// Package detect debounces platform detection requests while an operator
// types a meeting URL, so the backend sees at most one classification call
// per quiet period instead of one per keystroke.
package detect

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/VyankateshKulkarni13/meetborg/client"
	"github.com/VyankateshKulkarni13/meetborg/pkg/logging"
)

const (
	// DefaultQuietPeriod is how long input must be stable before a
	// classification call is made.
	DefaultQuietPeriod = 500 * time.Millisecond

	// minInputLength is the shortest input worth classifying. Anything
	// shorter clears the current classification without a network call.
	minInputLength = 10
)

// AdvisoryInvalidURL is shown when classification ran but found no
// supported platform.
const AdvisoryInvalidURL = "Could not detect a supported platform from this URL"

// ErrClosed is returned by Resolve after Close.
var ErrClosed = errors.New("detect: controller closed")

// State is the controller's current classification, safe to copy.
type State struct {
	// Detecting is true while a classification call is in flight.
	Detecting bool

	// Valid is true when the latest completed classification found a
	// supported platform. Platform and MeetingCode are only meaningful
	// when Valid is true.
	Valid       bool
	Platform    client.Platform
	MeetingCode *string

	// Message is the advisory to show the operator, empty when Valid.
	Message string
}

// Options configures a Controller.
type Options struct {
	// QuietPeriod overrides DefaultQuietPeriod.
	QuietPeriod time.Duration

	// Logger receives debug output. Defaults to a no-op logger.
	Logger logging.Logger
}

// Controller owns the debounce timer, the generation counter, and the
// classification state. Results are applied in schedule order: a result is
// dropped whenever a newer input has been seen since its call was
// scheduled, regardless of arrival order.
type Controller struct {
	classifier Classifier
	quiet      time.Duration
	log        logging.Logger

	mu     sync.Mutex
	gen    uint64
	timer  *time.Timer
	state  State
	closed bool
}

// NewController returns a Controller that classifies through classifier.
func NewController(classifier Classifier, opts *Options) *Controller {
	if opts == nil {
		opts = &Options{}
	}
	quiet := opts.QuietPeriod
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	log := opts.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Controller{
		classifier: classifier,
		quiet:      quiet,
		log:        log,
	}
}

// State returns a snapshot of the current classification.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetInput reports the current URL text. Each call supersedes all earlier
// ones: any pending timer is cancelled and any in-flight result will be
// discarded when it lands. Short input clears the classification
// immediately and schedules nothing.
func (c *Controller) SetInput(ctx context.Context, text string) {
	text = strings.TrimSpace(text)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.gen++
	gen := c.gen
	c.stopTimerLocked()

	if len(text) < minInputLength {
		c.state = State{}
		return
	}

	c.timer = time.AfterFunc(c.quiet, func() {
		c.classify(ctx, gen, text)
	})
}

// Resolve classifies url once, synchronously, through the same generation
// guard as SetInput. Pending debounced work is superseded.
func (c *Controller) Resolve(ctx context.Context, url string) (*Result, error) {
	url = strings.TrimSpace(url)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.gen++
	gen := c.gen
	c.stopTimerLocked()

	if len(url) < minInputLength {
		c.state = State{}
		c.mu.Unlock()
		return &Result{Message: AdvisoryInvalidURL}, nil
	}
	c.state.Detecting = true
	c.mu.Unlock()

	res, err := c.classifier.Classify(ctx, url)

	c.mu.Lock()
	c.applyLocked(gen, url, res, err)
	c.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return res, nil
}

// Close cancels pending work. In-flight results are discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.gen++
	c.stopTimerLocked()
}

// classify runs after the quiet period for a debounced input.
func (c *Controller) classify(ctx context.Context, gen uint64, text string) {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.state.Detecting = true
	c.mu.Unlock()

	res, err := c.classifier.Classify(ctx, text)

	c.mu.Lock()
	c.applyLocked(gen, text, res, err)
	c.mu.Unlock()
}

// applyLocked applies a classification result if gen is still current.
// Failures leave the previous classification in place: detection is
// advisory, so a flaky backend must not wipe state the operator can see.
func (c *Controller) applyLocked(gen uint64, text string, res *Result, err error) {
	if gen != c.gen {
		c.log.Debug("discarding superseded detection result",
			logging.F("input", text))
		return
	}
	c.state.Detecting = false

	if err != nil {
		c.log.Debug("platform detection failed",
			logging.F("input", text), logging.Err(err))
		return
	}

	if res.Valid {
		c.state = State{
			Valid:       true,
			Platform:    res.Platform,
			MeetingCode: res.MeetingCode,
		}
		return
	}
	c.state = State{Message: AdvisoryInvalidURL}
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
