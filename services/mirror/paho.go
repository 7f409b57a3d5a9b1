package mirror

import (
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"datalogger-go/errcode"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// PahoPublisher talks to a real MQTT broker.
type PahoPublisher struct {
	client paho.Client
}

// NewPahoPublisher connects to broker (e.g. "tcp://host:1883"). The client
// reconnects on its own after transient failures.
func NewPahoPublisher(broker, clientID string) (*PahoPublisher, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, &errcode.E{C: errcode.NetDown, Op: "mirror.connect", Msg: "broker connection timeout"}
	}
	if err := token.Error(); err != nil {
		return nil, errcode.Wrap(errcode.NetDown, "mirror.connect", err)
	}
	return &PahoPublisher{client: client}, nil
}

// Publish sends one message at QoS 0; a lost message is recoverable from the
// device log, so at-most-once is enough.
func (p *PahoPublisher) Publish(topic string, payload []byte) error {
	token := p.client.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return &errcode.E{C: errcode.NetDown, Op: "mirror.publish", Msg: "publish timeout"}
	}
	return errcode.Wrap(errcode.NetDown, "mirror.publish", token.Error())
}

func (p *PahoPublisher) IsConnected() bool { return p.client.IsConnected() }

func (p *PahoPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}
