// Package sink delivers drained notifications to places outside the process:
// a terminal and an MQTT broker.
package sink

import (
	"fmt"
	"io"

	"github.com/james-see/midiunion/pkg/notify"
)

// Console prints log notifications, one per line
type Console struct {
	w     io.Writer
	quiet bool
}

// NewConsole returns a Console writing to w. A quiet console prints nothing.
func NewConsole(w io.Writer, quiet bool) *Console {
	return &Console{w: w, quiet: quiet}
}

func (c *Console) Handle(n notify.Notification) {
	if c.quiet || n.Kind != notify.KindLog {
		return
	}
	fmt.Fprintf(c.w, "%s  %s\n", n.Time.Format("15:04:05.000"), n.Text)
}
