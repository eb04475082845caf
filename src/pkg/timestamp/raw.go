// Package timestamp turns the different shapes a stored timestamp can take
// into a single time.Time.
package timestamp

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

/*
Raw is a timestamp as it was read from the task store.

The same field can come back in several shapes depending on who wrote it and
when it was read:
  - Live: a value handed out by the store right after a write; it knows how to
    convert itself.
  - Serialized: the {seconds, nanoseconds} object a document takes after a
    reload.
  - Native: a time.Time already.
  - ISOString: legacy records that kept the date as text.
  - EpochMillis: legacy records that kept raw milliseconds.
  - Absent: no value, or a value of an unsupported shape.
*/
type Raw interface {
	isRaw()
}

// Converter is implemented by live store values.
type Converter interface {
	ToTime() time.Time
}

type Live struct {
	Value Converter
}

type Serialized struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int64 `json:"nanoseconds"`
}

type Native struct {
	Time time.Time
}

type ISOString string

type EpochMillis float64

type Absent struct{}

func (Live) isRaw()        {}
func (Serialized) isRaw()  {}
func (Native) isRaw()      {}
func (ISOString) isRaw()   {}
func (EpochMillis) isRaw() {}
func (Absent) isRaw()      {}

// ServerTime is the live value the stores hand out for timestamps they assign.
type ServerTime time.Time

func (s ServerTime) ToTime() time.Time { return time.Time(s) }

// Now returns a live timestamp for the current instant.
func Now() Raw {
	return Live{Value: ServerTime(time.Now())}
}

/*
FromAny classifies a loosely typed value (a decoded JSON document field, a SQL
column, a value built in memory) into one of the Raw variants.

The checks run in priority order: conversion method, seconds object, native
time, string, number. Anything else is Absent.
*/
func FromAny(value any) Raw {
	switch typed := value.(type) {
	case nil:
		return Absent{}
	case Raw:
		return typed
	case Converter:
		return Live{Value: typed}
	case map[string]any:
		if serialized, ok := serializedFromMap(typed); ok {
			return serialized
		}
		return Absent{}
	case time.Time:
		return Native{Time: typed}
	case *time.Time:
		if typed == nil {
			return Absent{}
		}
		return Native{Time: *typed}
	case string:
		if strings.TrimSpace(typed) == "" {
			return Absent{}
		}
		return ISOString(typed)
	case []byte:
		return FromAny(string(typed))
	case json.Number:
		number, err := typed.Float64()
		if err != nil {
			return Absent{}
		}
		return EpochMillis(number)
	case float64:
		return EpochMillis(typed)
	case float32:
		return EpochMillis(typed)
	case int:
		return EpochMillis(typed)
	case int64:
		return EpochMillis(typed)
	case int32:
		return EpochMillis(typed)
	}
	return Absent{}
}

// Firestore exports write either {seconds, nanoseconds} or {_seconds, _nanoseconds}.
func serializedFromMap(document map[string]any) (serialized Serialized, ok bool) {
	for _, prefix := range []string{"", "_"} {
		seconds, found := integerField(document[prefix+"seconds"])
		if !found {
			continue
		}
		nanoseconds, _ := integerField(document[prefix+"nanoseconds"])
		return Serialized{Seconds: seconds, Nanoseconds: nanoseconds}, true
	}
	return serialized, false
}

func integerField(value any) (number int64, ok bool) {
	switch typed := value.(type) {
	case int:
		return int64(typed), true
	case int64:
		return typed, true
	case int32:
		return int64(typed), true
	case float64:
		if math.IsNaN(typed) || math.IsInf(typed, 0) || typed != math.Trunc(typed) {
			return 0, false
		}
		return int64(typed), true
	case json.Number:
		parsed, err := typed.Int64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

// ShapeName names the variant raw holds, for diagnostics.
func ShapeName(raw Raw) string {
	switch raw.(type) {
	case Live:
		return "live"
	case Serialized:
		return "serialized"
	case Native:
		return "native"
	case ISOString:
		return "string"
	case EpochMillis:
		return "epoch_millis"
	}
	return "absent"
}
