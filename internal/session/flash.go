package session

// Flash kinds
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

var flashKinds = []string{FlashSuccess, FlashError, FlashInfo}

type Flash struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func flashKey(kind string) string {
	return "flash_" + kind
}

// AddFlash queues a one-shot message for the next page view.
func (c *Context) AddFlash(kind, message string) {
	c.values.AddFlash(message, flashKey(kind))
}

// Flashes returns and clears the queued messages, grouped by kind.
func (c *Context) Flashes() []Flash {
	var out []Flash
	for _, kind := range flashKinds {
		for _, raw := range c.values.Flashes(flashKey(kind)) {
			if message, ok := raw.(string); ok {
				out = append(out, Flash{Type: kind, Message: message})
			}
		}
	}
	return out
}
