package sink

import (
	"encoding/json"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/james-see/midiunion/pkg/config"
	"github.com/james-see/midiunion/pkg/logging"
	"github.com/james-see/midiunion/pkg/notify"
	"github.com/james-see/midiunion/pkg/router"
)

const (
	connectTimeout    = 10 * time.Second
	publishTimeout    = 2 * time.Second
	disconnectQuiesce = 250 // milliseconds
	keepAlive         = 30 * time.Second
	maxQoS            = 2
)

// Publisher is the part of a paho client the MQTT sink needs
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
}

// MQTT publishes notifications as JSON:
//
//	<prefix>/notes  {"event":"note_on","note":72,"name":"C5","time":"..."}
//	<prefix>/log    {"text":"NoteOn channel: 1->3, ...","time":"..."}
type MQTT struct {
	pub    Publisher
	prefix string
	qos    byte
	logger *logging.Logger
}

type notePayload struct {
	Event string    `json:"event"`
	Note  uint8     `json:"note"`
	Name  string    `json:"name"`
	Time  time.Time `json:"time"`
}

type logPayload struct {
	Text string    `json:"text"`
	Time time.Time `json:"time"`
}

// NewMQTT returns a sink publishing through pub under prefix
func NewMQTT(pub Publisher, prefix string, qos int, logger *logging.Logger) *MQTT {
	if logger == nil {
		logger = logging.Nop()
	}
	if qos < 0 || qos > maxQoS {
		qos = 0
	}
	return &MQTT{
		pub:    pub,
		prefix: prefix,
		qos:    byte(qos),
		logger: logger.With("component", "mqtt"),
	}
}

// NotesTopic is where note on/off events are published
func (m *MQTT) NotesTopic() string { return m.prefix + "/notes" }

// LogTopic is where log lines are published
func (m *MQTT) LogTopic() string { return m.prefix + "/log" }

// Handle publishes n. Failures are logged and the notification is dropped.
func (m *MQTT) Handle(n notify.Notification) {
	var topic string
	var payload any
	switch n.Kind {
	case notify.KindNoteOn, notify.KindNoteOff:
		topic = m.NotesTopic()
		payload = notePayload{Event: n.Kind.String(), Note: n.Note, Name: router.NoteName(n.Note), Time: n.Time.UTC()}
	default:
		topic = m.LogTopic()
		payload = logPayload{Text: n.Text, Time: n.Time.UTC()}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		m.logger.Error("encoding notification", "error", err)
		return
	}
	if err := m.publish(topic, data); err != nil {
		m.logger.Warn("publish failed", "topic", topic, "error", err)
	}
}

func (m *MQTT) publish(topic string, data []byte) error {
	token := m.pub.Publish(topic, m.qos, false, data)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, publishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// DialMQTT connects to the broker named in cfg
func DialMQTT(cfg config.MQTTConfig) (pahomqtt.Client, error) {
	client := pahomqtt.NewClient(clientOptions(cfg))
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return client, nil
}

// CloseMQTT disconnects after letting queued publishes finish
func CloseMQTT(client pahomqtt.Client) {
	client.Disconnect(disconnectQuiesce)
}

func clientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetKeepAlive(keepAlive)
	return opts
}
