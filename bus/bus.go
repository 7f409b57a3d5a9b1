// Package bus is the firmware's internal publish/subscribe fabric. It
// carries observer traffic only — transition events, activity blips for the
// indicator LEDs, health flags, config updates. Core logger state never
// crosses it; the recorder loop stays the single owner.
package bus

import (
	"strings"
	"sync"
)

// Wildcard matches exactly one topic segment when subscribing.
const Wildcard = "+"

// Well-known topics.
var (
	TopicTransition   = Topic{"events", "transition"}
	TopicNetActivity  = Topic{"activity", "net"}
	TopicStoreWrite   = Topic{"activity", "eeprom"}
	TopicClockHealth  = Topic{"health", "clock"}
	TopicHeartbeatCfg = Topic{"config", "heartbeat"}
)

// Topic is a path of string segments.
type Topic []string

func (t Topic) String() string { return strings.Join(t, "/") }

// Message is one published datum.
type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
}

// Subscription receives messages for a topic pattern.
type Subscription struct {
	pattern Topic
	ch      chan *Message
	conn    *Connection
}

func (s *Subscription) Pattern() Topic           { return s.pattern }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

type node struct {
	children map[string]*node
	subs     []*Subscription
	retained *Message
}

// Bus routes messages through a segment trie. Publishing to a slow
// subscriber drops that subscriber's oldest queued message rather than
// blocking the publisher.
type Bus struct {
	mu   sync.RWMutex
	root *node
	qLen int
}

// New creates a bus; queueLen is the per-subscription queue depth.
func New(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8
	}
	return &Bus{root: &node{}, qLen: queueLen}
}

func (b *Bus) subscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	for _, seg := range sub.pattern {
		if n.children == nil {
			n.children = make(map[string]*node)
		}
		child, ok := n.children[seg]
		if !ok {
			child = &node{}
			n.children[seg] = child
		}
		n = child
	}
	n.subs = append(n.subs, sub)

	if n.retained != nil {
		select {
		case sub.ch <- n.retained:
		default:
		}
	}
}

// Publish routes msg to every matching subscription. With msg.Retained the
// last payload is kept and replayed to late subscribers; a retained message
// with a nil payload clears the retention.
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deliver(b.root, msg.Topic, msg)
}

func (b *Bus) deliver(n *node, rest Topic, msg *Message) {
	if len(rest) == 0 {
		for _, sub := range n.subs {
			select {
			case sub.ch <- msg:
			default:
				// Queue full: drop the oldest. The receive must not
				// block either, since the subscriber may drain the
				// queue first; afterwards the send cannot block,
				// because senders serialize on b.mu and the queue
				// now has at least one free slot.
				select {
				case <-sub.ch:
				default:
				}
				sub.ch <- msg
			}
		}
		if msg.Retained {
			if msg.Payload == nil {
				n.retained = nil
			} else {
				n.retained = msg
			}
		}
		return
	}

	seg := rest[0]
	if n.children == nil {
		if !msg.Retained {
			return
		}
		n.children = make(map[string]*node)
	}
	child, ok := n.children[seg]
	if !ok && msg.Retained {
		child = &node{}
		n.children[seg] = child
		ok = true
	}
	if ok {
		b.deliver(child, rest[1:], msg)
	}
	if wild, ok := n.children[Wildcard]; ok && seg != Wildcard {
		// Wildcard branches match any segment but never retain.
		b.deliver(wild, rest[1:], &Message{Topic: msg.Topic, Payload: msg.Payload})
	}
}

func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	var path []*node
	for _, seg := range sub.pattern {
		child, ok := n.children[seg]
		if !ok {
			return
		}
		path = append(path, n)
		n = child
	}
	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			break
		}
	}
	// Prune now-empty branches.
	for i := len(sub.pattern) - 1; i >= 0; i-- {
		parent := path[i]
		seg := sub.pattern[i]
		child := parent.children[seg]
		if len(child.subs) == 0 && len(child.children) == 0 && child.retained == nil {
			delete(parent.children, seg)
		} else {
			break
		}
	}
}

// Connection groups subscriptions under one owner so a service can tear
// everything down in one call.
type Connection struct {
	bus  *Bus
	mu   sync.Mutex
	subs []*Subscription
	name string
}

// Connect returns a connection named for diagnostics.
func (b *Bus) Connect(name string) *Connection {
	return &Connection{bus: b, name: name}
}

// Publish sends payload on topic.
func (c *Connection) Publish(topic Topic, payload any) {
	c.bus.Publish(&Message{Topic: topic, Payload: payload})
}

// PublishRetained sends payload on topic and keeps it for late subscribers.
func (c *Connection) PublishRetained(topic Topic, payload any) {
	c.bus.Publish(&Message{Topic: topic, Payload: payload, Retained: true})
}

// Subscribe registers a pattern; Wildcard segments match any one segment.
func (c *Connection) Subscribe(pattern Topic) *Subscription {
	sub := &Subscription{
		pattern: pattern,
		ch:      make(chan *Message, c.bus.qLen),
		conn:    c,
	}
	c.bus.subscribe(sub)
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return sub
}

// Unsubscribe removes a subscription owned by this connection.
func (c *Connection) Unsubscribe(sub *Subscription) {
	c.bus.unsubscribe(sub)
	c.mu.Lock()
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
}

// Disconnect closes all subscriptions and clears them.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		c.bus.unsubscribe(sub)
		close(sub.ch)
	}
}
