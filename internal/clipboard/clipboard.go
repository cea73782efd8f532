// Package clipboard copies text to the system clipboard and, for remote
// terminals, through the OSC 52 escape sequence.
package clipboard

import (
	"github.com/atotto/clipboard"
	"github.com/muesli/termenv"
)

var (
	systemWrite  = clipboard.WriteAll
	terminalCopy = termenv.Copy
)

// Write copies text. The terminal copy is always sent; the error reports
// only whether the system clipboard accepted the text.
func Write(text string) error {
	terminalCopy(text)
	if clipboard.Unsupported {
		return nil
	}
	return systemWrite(text)
}

// Available reports whether a system clipboard tool was found.
func Available() bool {
	return !clipboard.Unsupported
}
