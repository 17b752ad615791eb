package activerecord

import (
	"fmt"
	"reflect"

	"github.com/go-gorm/activerecord/events"
	"github.com/go-gorm/activerecord/schema"
	"github.com/go-gorm/activerecord/utils"
)

var defaultObservableEvents = []string{
	"retrieved", "creating", "created", "updating", "updated",
	"saving", "saved", "deleting", "deleted",
}

// ModelEventTopic named topic of event on the model type name, e.g. "model.saving: User"
func ModelEventTopic(event, name string) events.Topic {
	return events.Named("model." + event + ": " + name)
}

// ObservableEvents events observers may listen to
func (m *Model) ObservableEvents() []string {
	return utils.AppendUnique(append([]string{}, defaultObservableEvents...), m.observables...)
}

// SetObservableEvents replace the custom observable events
func (m *Model) SetObservableEvents(names ...string) *Model {
	m.observables = append([]string{}, names...)
	return m
}

// AddObservableEvents add custom observable events
func (m *Model) AddObservableEvents(names ...string) *Model {
	m.observables = utils.AppendUnique(m.observables, names...)
	return m
}

// RemoveObservableEvents remove custom observable events
func (m *Model) RemoveObservableEvents(names ...string) *Model {
	m.observables = utils.Without(m.observables, names...)
	return m
}

// FireEvent fire a custom model event, halting events stop at the first listener returning false
func (m *Model) FireEvent(event string, halt bool) bool {
	return m.fireModelEvent(event, halt)
}

// fireModelEvent fire the typed event declared for event, then the named topic. A halting
// event is cancelled by a false response.
func (m *Model) fireModelEvent(event string, halt bool) bool {
	dispatcher := m.registry().Dispatcher
	if dispatcher == nil {
		return true
	}

	if fn, ok := m.def.dispatchesEvents[event]; ok {
		if payload := fn(m); payload != nil && !fire(dispatcher, events.Typed(payload), payload, halt) {
			return false
		}
	}

	return fire(dispatcher, ModelEventTopic(event, m.def.Name), m, halt)
}

func fire(dispatcher events.Dispatcher, topic events.Topic, payload interface{}, halt bool) bool {
	if halt {
		result, ok := dispatcher.Until(topic, payload).(bool)
		return !ok || result
	}
	dispatcher.Dispatch(topic, payload)
	return true
}

// On listen to event of def, returning false from a halting event cancels the operation
func (r *Registry) On(def *Definition, event string, fn func(*Model) bool) {
	r.Dispatcher.Listen(ModelEventTopic(event, def.Name), func(payload interface{}) interface{} {
		m, _ := payload.(*Model)
		if fn(m) {
			return nil
		}
		return false
	})
}

// On listen to event of d
func (d *Definition) On(event string, fn func(*Model) bool) {
	d.registry.On(d, event, fn)
}

// Observe register observers of def. An observer listens to every observable event it
// has a method for, named after the event (Creating, Saved, ...) and taking a *Model,
// optionally returning bool. Registering the same observer type twice is a no-op.
func (r *Registry) Observe(def *Definition, observers ...interface{}) error {
	eventNames := def.blank().ObservableEvents()

	for _, observer := range observers {
		value := reflect.ValueOf(observer)
		for _, event := range eventNames {
			method := value.MethodByName(schema.ToStudly(event))
			if !method.IsValid() {
				continue
			}

			listener, err := observerListener(method)
			if err != nil {
				return fmt.Errorf("observer %T.%s: %w", observer, schema.ToStudly(event), err)
			}

			key := utils.ToStringKey(value.Type().String(), event)
			r.mu.Lock()
			if r.observed[def.Name] == nil {
				r.observed[def.Name] = map[string]bool{}
			}
			seen := r.observed[def.Name][key]
			r.observed[def.Name][key] = true
			r.mu.Unlock()

			if !seen {
				r.Dispatcher.Listen(ModelEventTopic(event, def.Name), listener)
			}
		}
	}
	return nil
}

// Observe register observers of d
func (d *Definition) Observe(observers ...interface{}) error {
	return d.registry.Observe(d, observers...)
}

func observerListener(method reflect.Value) (events.Listener, error) {
	switch fn := method.Interface().(type) {
	case func(*Model) bool:
		return func(payload interface{}) interface{} {
			m, _ := payload.(*Model)
			if fn(m) {
				return nil
			}
			return false
		}, nil
	case func(*Model):
		return func(payload interface{}) interface{} {
			m, _ := payload.(*Model)
			fn(m)
			return nil
		}, nil
	}
	return nil, fmt.Errorf("unsupported signature %s", method.Type())
}

// FlushEventListeners forget every listener of def, named and typed
func (r *Registry) FlushEventListeners(def *Definition) {
	if r.Dispatcher == nil {
		return
	}

	blank := def.blank()
	for _, event := range blank.ObservableEvents() {
		r.Dispatcher.Forget(ModelEventTopic(event, def.Name))
	}
	for _, fn := range def.dispatchesEvents {
		if payload := fn(blank); payload != nil {
			r.Dispatcher.Forget(events.Typed(payload))
		}
	}

	r.mu.Lock()
	delete(r.observed, def.Name)
	r.mu.Unlock()
}

// FlushEventListeners forget every listener of d
func (d *Definition) FlushEventListeners() {
	d.registry.FlushEventListeners(d)
}
