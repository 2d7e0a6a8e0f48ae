package session

import "time"

// ToastDuration is how long a toast stays visible.
const ToastDuration = 3200 * time.Millisecond

type ToastKind int

const (
	ToastInfo ToastKind = iota
	ToastSuccess
	ToastError
)

// Toast is a transient notification. Seq grows with every toast so a stale
// expiry timer cannot hide a newer one.
type Toast struct {
	Seq  int
	Text string
	Kind ToastKind
}

const (
	msgSelectProvider  = "Select a provider first"
	msgEnterCode       = "Enter code first"
	msgEnterPrompt     = "Enter a prompt first"
	msgProvidersFailed = "Failed to load providers"
	msgHistoryFailed   = "Failed to load history"
	msgCleared         = "Conversation cleared"
	msgSaveFailed      = "Save failed"
	msgNetworkError    = "Network error"
	msgUnknownError    = "Unknown error"
	networkErrorPrefix = "Network error: "
)

func (c *Controller) notify(text string, kind ToastKind) {
	c.toastSeq++
	c.toast = &Toast{Seq: c.toastSeq, Text: text, Kind: kind}
}

// Toast returns the visible toast, if any.
func (c *Controller) Toast() (Toast, bool) {
	if c.toast == nil {
		return Toast{}, false
	}
	return *c.toast, true
}

// ExpireToast hides the toast with the given sequence number. Expiring an
// older toast is a no-op.
func (c *Controller) ExpireToast(seq int) {
	if c.toast != nil && c.toast.Seq == seq {
		c.toast = nil
	}
}

// Notify shows a toast raised by the UI itself, such as a clipboard copy.
func (c *Controller) Notify(text string, kind ToastKind) {
	c.notify(text, kind)
}
