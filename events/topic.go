package events

import (
	"fmt"
	"reflect"
)

// Topic names what listeners subscribe to, either a plain name or the Go type of an event value
type Topic struct {
	name  string
	event interface{}
	typ   reflect.Type
}

// Named plain string topic, e.g. "model.saving: User"
func Named(name string) Topic {
	return Topic{name: name}
}

// Typed topic keyed by the type of event, pointers and values of the same type match
func Typed(event interface{}) Topic {
	typ := reflect.TypeOf(event)
	for typ != nil && typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	return Topic{event: event, typ: typ}
}

// TypedOf typed topic for T without an event value, used when registering listeners
func TypedOf[T any]() Topic {
	return Topic{typ: reflect.TypeOf((*T)(nil)).Elem()}
}

// IsTyped reports whether the topic is keyed by an event type
func (t Topic) IsTyped() bool {
	return t.typ != nil
}

// Event the event value of a typed topic
func (t Topic) Event() interface{} {
	return t.event
}

// Name topic name, the qualified type name for typed topics
func (t Topic) Name() string {
	if t.typ == nil {
		return t.name
	}
	if t.typ.Name() == "" {
		return t.typ.String()
	}
	return t.typ.PkgPath() + "." + t.typ.Name()
}

// Key unique key of the topic, named and typed topics never collide
func (t Topic) Key() string {
	if t.typ != nil {
		return "type:" + t.Name()
	}
	return "name:" + t.name
}

func (t Topic) String() string {
	if t.typ != nil {
		return fmt.Sprintf("Typed(%s)", t.Name())
	}
	return fmt.Sprintf("Named(%s)", t.name)
}
