package portal

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/savanna-accountancy/portal/h"
)

// SignalType lists the value types a signal can carry.
type SignalType interface {
	int | int64 | float64 | string | bool
}

type signalBinding interface {
	signalID() string
	value() any
	inject(raw any) error
	changed() bool
	markChanged()
	markSynced()
}

// SignalHandle is a typed value shared between the server and the browser.
// Bound inputs write it before every action; Set writes it back on the next
// sync.
type SignalHandle[T SignalType] struct {
	id    string
	mu    sync.RWMutex
	val   T
	dirty bool
}

// Signal creates a signal owned by the tab c.
func Signal[T SignalType](c *Context, initial T) *SignalHandle[T] {
	s := &SignalHandle[T]{id: "s" + genRandID(), val: initial}
	c.addSignal(s)
	return s
}

// Get returns the current value.
func (s *SignalHandle[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.val
}

// Set changes the value. The browser sees it after the next Sync.
func (s *SignalHandle[T]) Set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.val = v
	s.dirty = true
}

// String returns the value formatted for display.
func (s *SignalHandle[T]) String() string {
	return fmt.Sprint(s.Get())
}

// ID returns the signal name used in Datastar expressions.
func (s *SignalHandle[T]) ID() string {
	return s.id
}

// Ref returns the signal reference for Datastar expressions, e.g. "$s1a2b3c4d".
func (s *SignalHandle[T]) Ref() string {
	return "$" + s.id
}

// Bind two-way binds an input element to the signal.
func (s *SignalHandle[T]) Bind() h.H {
	return h.Data("bind", s.id)
}

// Text sets the element's text to the signal value.
func (s *SignalHandle[T]) Text() h.H {
	return h.Data("text", s.Ref())
}

// Show displays the element only while the signal is truthy.
func (s *SignalHandle[T]) Show() h.H {
	return h.Data("show", s.Ref())
}

func (s *SignalHandle[T]) signalID() string {
	return s.id
}

func (s *SignalHandle[T]) value() any {
	return s.Get()
}

func (s *SignalHandle[T]) changed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

func (s *SignalHandle[T]) markChanged() {
	s.mu.Lock()
	s.dirty = true
	s.mu.Unlock()
}

func (s *SignalHandle[T]) markSynced() {
	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
}

// inject stores a value decoded from the browser. JSON numbers arrive as
// float64 and some inputs report numbers as strings.
func (s *SignalHandle[T]) inject(raw any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch v := raw.(type) {
	case T:
		s.val = v
		return nil
	case float64:
		return convertFloat64(v, &s.val)
	case string:
		return convertString(v, &s.val)
	case bool:
		return convertString(strconv.FormatBool(v), &s.val)
	case nil:
		var zero T
		s.val = zero
		return nil
	}
	return fmt.Errorf("unsupported signal value %T", raw)
}

func convertFloat64[T SignalType](f float64, dst *T) error {
	switch p := any(dst).(type) {
	case *int:
		*p = int(f)
	case *int64:
		*p = int64(f)
	case *float64:
		*p = f
	case *string:
		*p = strconv.FormatFloat(f, 'f', -1, 64)
	case *bool:
		*p = f != 0
	}
	return nil
}

func convertString[T SignalType](str string, dst *T) error {
	switch p := any(dst).(type) {
	case *string:
		*p = str
	case *int:
		n, err := strconv.Atoi(str)
		if err != nil {
			return err
		}
		*p = n
	case *int64:
		n, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return err
		}
		*p = n
	case *float64:
		n, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return err
		}
		*p = n
	case *bool:
		b, err := strconv.ParseBool(str)
		if err != nil {
			return err
		}
		*p = b
	}
	return nil
}
