package avatar

import (
	"log/slog"
	"sync"

	"github.com/oszuidwest/zwfm-avatar/internal/bridge"
	"github.com/oszuidwest/zwfm-avatar/internal/config"
	"github.com/oszuidwest/zwfm-avatar/internal/types"
)

// subscriberBuffer is the per-subscriber channel capacity. A subscriber that
// stops draining loses pose updates instead of blocking the controller.
const subscriberBuffer = 8

// Controller is the single consumer of the activity bridge. It shapes the raw
// activity stream through the pulse shaper, tracks the current pose and fans
// pose changes out to subscribers.
type Controller struct {
	assets *Assets
	config *config.Config
	shaper *bridge.PulseShaper

	mu          sync.Mutex
	current     types.Pose
	subscribers map[chan types.Pose]struct{}
}

// NewController creates a controller for the given assets and configuration.
func NewController(assets *Assets, cfg *config.Config) *Controller {
	c := &Controller{
		assets:      assets,
		config:      cfg,
		subscribers: make(map[chan types.Pose]struct{}),
	}
	c.shaper = bridge.NewPulseShaper(c.setActive)
	return c
}

// Run consumes activity events until the bridge closes. Call in a goroutine.
func (c *Controller) Run(br *bridge.Bridge) {
	for active := range br.Events() {
		c.shaper.Feed(active, c.config.Snapshot().FlickerEnabled)
	}
	c.shaper.Stop()
	c.setActive(false)
	slog.Debug("avatar controller stopped")
}

// Current returns the pose currently shown.
func (c *Controller) Current() types.Pose {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Image returns the image for the given pose.
func (c *Controller) Image(pose types.Pose) PoseImage {
	return c.assets.Image(pose)
}

// Subscribe registers a pose change listener. The returned cancel function
// removes the subscription and closes the channel.
func (c *Controller) Subscribe() (<-chan types.Pose, func()) {
	ch := make(chan types.Pose, subscriberBuffer)

	c.mu.Lock()
	c.subscribers[ch] = struct{}{}
	// Deliver the current pose so new subscribers render immediately
	ch <- c.current
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.subscribers[ch]; ok {
			delete(c.subscribers, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// setActive receives shaped activity states from the pulse shaper.
func (c *Controller) setActive(active bool) {
	pose := types.PoseIdle
	if active {
		pose = types.PoseTalking
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if pose == c.current {
		return
	}
	c.current = pose

	for ch := range c.subscribers {
		select {
		case ch <- pose:
		default:
			// Subscriber lagging, it will catch up on the next change
		}
	}
}
