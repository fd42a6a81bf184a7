package sink

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/james-see/midiunion/pkg/config"
	"github.com/james-see/midiunion/pkg/notify"
)

var at = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestConsolePrintsLogsOnly(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false)

	c.Handle(notify.Notification{Kind: notify.KindLog, Text: "NoteOn channel: 1, note: 60, velocity: 100", Time: at})
	c.Handle(notify.Notification{Kind: notify.KindNoteOn, Note: 60, Time: at})

	want := "12:00:00.000  NoteOn channel: 1, note: 60, velocity: 100\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestConsoleQuiet(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf, true).Handle(notify.Notification{Kind: notify.KindLog, Text: "x", Time: at})
	if buf.Len() != 0 {
		t.Errorf("quiet console wrote %q", buf.String())
	}
}

type token struct {
	err error
}

func (t *token) Wait() bool                     { return true }
func (t *token) WaitTimeout(time.Duration) bool { return true }
func (t *token) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *token) Error() error { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (p *fakePublisher) Publish(topic string, qos byte, _ bool, payload interface{}) pahomqtt.Token {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return &token{err: p.err}
}

func TestMQTTPublishesNotes(t *testing.T) {
	pub := &fakePublisher{}
	m := NewMQTT(pub, "studio", 1, nil)

	m.Handle(notify.Notification{Kind: notify.KindNoteOn, Note: 72, Time: at})
	m.Handle(notify.Notification{Kind: notify.KindLog, Text: "Stopped", Time: at})

	if len(pub.msgs) != 2 {
		t.Fatalf("published %d messages, want 2", len(pub.msgs))
	}

	note := pub.msgs[0]
	if note.topic != "studio/notes" || note.qos != 1 {
		t.Errorf("note published to %q qos %d", note.topic, note.qos)
	}
	var np notePayload
	if err := json.Unmarshal(note.payload, &np); err != nil {
		t.Fatalf("note payload: %v", err)
	}
	if np.Event != "note_on" || np.Note != 72 || np.Name != "C5" || !np.Time.Equal(at) {
		t.Errorf("note payload = %+v", np)
	}

	if pub.msgs[1].topic != "studio/log" || !strings.Contains(string(pub.msgs[1].payload), `"text":"Stopped"`) {
		t.Errorf("log message = %s %s", pub.msgs[1].topic, pub.msgs[1].payload)
	}
}

func TestMQTTPublishError(t *testing.T) {
	m := NewMQTT(&fakePublisher{err: errors.New("broker gone")}, "midiunion", 0, nil)

	err := m.publish(m.LogTopic(), []byte(`{}`))
	if !errors.Is(err, ErrPublishFailed) {
		t.Errorf("publish() error = %v, want ErrPublishFailed", err)
	}
	// Handle swallows the error
	m.Handle(notify.Notification{Kind: notify.KindLog, Text: "x", Time: at})
}

func TestMQTTInvalidQoSFallsBack(t *testing.T) {
	if m := NewMQTT(&fakePublisher{}, "p", 7, nil); m.qos != 0 {
		t.Errorf("qos = %d, want 0", m.qos)
	}
}

func TestClientOptions(t *testing.T) {
	opts := clientOptions(config.MQTTConfig{
		Broker:   "tcp://broker:1883",
		ClientID: "midiunion-test",
		Username: "user",
		Password: "secret",
	})
	if len(opts.Servers) != 1 || opts.Servers[0].Host != "broker:1883" {
		t.Errorf("Servers = %v", opts.Servers)
	}
	if opts.ClientID != "midiunion-test" || opts.Username != "user" {
		t.Errorf("ClientID = %q, Username = %q", opts.ClientID, opts.Username)
	}
}
