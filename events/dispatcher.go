package events

import (
	"sync"
)

// Listener handles a dispatched payload, a non-nil result is a response
type Listener func(payload interface{}) interface{}

// Dispatcher event dispatcher contract
type Dispatcher interface {
	// Listen register listener for topic, listeners run in registration order
	Listen(topic Topic, listener Listener)
	// Until dispatch payload and stop at the first non-nil response, which is returned
	Until(topic Topic, payload interface{}) interface{}
	// Dispatch payload to every listener, collecting responses, a false response stops propagation
	Dispatch(topic Topic, payload interface{}) []interface{}
	// Forget remove all listeners of topic
	Forget(topic Topic)
	// HasListeners reports whether topic has any listener
	HasListeners(topic Topic) bool
}

// Memory in-memory Dispatcher, safe for concurrent use
type Memory struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
}

// New create an in-memory dispatcher
func New() *Memory {
	return &Memory{listeners: map[string][]Listener{}}
}

var _ Dispatcher = (*Memory)(nil)

func (d *Memory) Listen(topic Topic, listener Listener) {
	if listener == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.listeners == nil {
		d.listeners = map[string][]Listener{}
	}
	key := topic.Key()
	d.listeners[key] = append(d.listeners[key], listener)
}

func (d *Memory) listenersOf(topic Topic) []Listener {
	d.mu.RLock()
	defer d.mu.RUnlock()
	// copy so listeners may register or forget while being called
	return append([]Listener(nil), d.listeners[topic.Key()]...)
}

func payloadOf(topic Topic, payload interface{}) interface{} {
	if payload == nil && topic.IsTyped() {
		return topic.Event()
	}
	return payload
}

func (d *Memory) Until(topic Topic, payload interface{}) interface{} {
	payload = payloadOf(topic, payload)
	for _, listener := range d.listenersOf(topic) {
		if response := listener(payload); response != nil {
			return response
		}
	}
	return nil
}

func (d *Memory) Dispatch(topic Topic, payload interface{}) []interface{} {
	var responses []interface{}

	payload = payloadOf(topic, payload)
	for _, listener := range d.listenersOf(topic) {
		response := listener(payload)
		if b, ok := response.(bool); ok && !b {
			break
		}
		responses = append(responses, response)
	}
	return responses
}

func (d *Memory) Forget(topic Topic) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.listeners, topic.Key())
}

func (d *Memory) HasListeners(topic Topic) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners[topic.Key()]) > 0
}

// Topics keys of every topic with listeners
func (d *Memory) Topics() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	keys := make([]string, 0, len(d.listeners))
	for key, listeners := range d.listeners {
		if len(listeners) > 0 {
			keys = append(keys, key)
		}
	}
	return keys
}
