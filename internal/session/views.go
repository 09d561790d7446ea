package session

import "time"

// ViewWindow is the minimum delay between two counted views of the same
// discussion by one session.
const ViewWindow = time.Hour

// MaxTrackedViews bounds the view log kept in the session. Past it the
// oldest entry is forgotten, so that discussion may be counted again early.
const MaxTrackedViews = 16

// ShouldCountView records a view of discussionID and reports whether it
// should increment the discussion's counter.
func (c *Context) ShouldCountView(discussionID uint64) bool {
	views, ok := c.values.Get(keyViews).(map[uint64]int64)
	if !ok {
		views = map[uint64]int64{}
	}

	now := c.now().Unix()
	window := int64(ViewWindow / time.Second)

	if last, seen := views[discussionID]; seen && now-last < window {
		return false
	}

	for id, last := range views {
		if now-last >= window {
			delete(views, id)
		}
	}
	for len(views) >= MaxTrackedViews {
		delete(views, oldestView(views))
	}
	views[discussionID] = now
	c.values.Set(keyViews, views)
	return true
}

func oldestView(views map[uint64]int64) uint64 {
	var (
		oldest uint64
		at     int64
		first  = true
	)
	for id, last := range views {
		if first || last < at {
			oldest, at, first = id, last, false
		}
	}
	return oldest
}
