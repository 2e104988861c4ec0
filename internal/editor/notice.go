package editor

import (
	"errors"

	"github.com/petervdpas/jsondesk/internal/client"
)

const (
	MsgLoadFailed = "Failed to load file."
	MsgSaved      = "File saved successfully!"
	MsgSaveFailed = "Failed to save file."
	MsgNoFile     = "No file selected."
)

type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeError
)

// Notice is what the operator sees after a load or save completes.
type Notice struct {
	Kind NoticeKind
	Text string
	Err  error
}

// Notifier receives notices. Implementations must be safe for use from
// multiple goroutines since completions arrive asynchronously.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

func LoadNotice(err error) Notice {
	return Notice{Kind: NoticeError, Text: MsgLoadFailed, Err: err}
}

// SaveNotice maps a save outcome to its notice. Only a non-2xx response
// surfaces the server's text; transport failures stay generic.
func SaveNotice(err error) Notice {
	if err == nil {
		return Notice{Kind: NoticeInfo, Text: MsgSaved}
	}
	var se *client.HTTPStatusError
	if errors.As(err, &se) {
		return Notice{Kind: NoticeError, Text: "Error: " + se.Body, Err: err}
	}
	if errors.Is(err, ErrNoSelection) {
		return Notice{Kind: NoticeError, Text: MsgNoFile, Err: err}
	}
	return Notice{Kind: NoticeError, Text: MsgSaveFailed, Err: err}
}
