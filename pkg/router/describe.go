package router

import (
	"fmt"
	"strings"
)

// Describe renders a routed message for the message log, showing
// before->after for every rewritten field. Channels are 1-based.
func Describe(res Result) string {
	msg := res.Message
	kind := KindOf(msg)
	if !IsChannelVoice(msg) {
		if len(msg) == 0 {
			return "Empty"
		}
		return msg.String()
	}

	ch, _ := ChannelOf(res.Original)
	channel := fmt.Sprintf("channel: %d", ch+1)
	if t := res.Transform; t.ToChannel != nil {
		channel = fmt.Sprintf("channel: %d->%d", *t.FromChannel+1, *t.ToChannel+1)
	}

	var b strings.Builder
	b.WriteString(kind.String())
	b.WriteString(" ")
	b.WriteString(channel)

	if note, vel, ok := NoteOf(res.Original); ok {
		if t := res.Transform; t.ToNote != nil {
			fmt.Fprintf(&b, ", note: %d->%d", *t.FromNote, *t.ToNote)
		} else {
			fmt.Fprintf(&b, ", note: %d", note)
		}
		fmt.Fprintf(&b, ", velocity: %d", vel)
		return b.String()
	}

	if len(msg) > 1 {
		fmt.Fprintf(&b, ", data: %v", []byte(msg[1:]))
	}
	return b.String()
}
