package timestamp

import (
	"bytes"
	"encoding/json"
	"time"
)

const unavailableLabel = "Fecha no disponible"

/*
Encode serializes a raw timestamp the way a document store persists it.

Live and Native values become {seconds, nanoseconds} objects, so reading them
back yields Serialized; strings and numbers are kept as written.
*/
func Encode(raw Raw) ([]byte, error) {
	switch value := raw.(type) {
	case Live:
		if value.Value == nil {
			return []byte("null"), nil
		}
		return json.Marshal(serializedFromTime(value.Value.ToTime()))
	case Native:
		if value.Time.IsZero() {
			return []byte("null"), nil
		}
		return json.Marshal(serializedFromTime(value.Time))
	case Serialized:
		return json.Marshal(value)
	case ISOString:
		return json.Marshal(string(value))
	case EpochMillis:
		return json.Marshal(float64(value))
	}
	return []byte("null"), nil
}

// Decode reads a stored JSON value back into a Raw variant.
func Decode(data []byte) Raw {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Absent{}
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	err := decoder.Decode(&value)
	if err != nil || decoder.InputOffset() < int64(len(trimmed)) {
		// Unquoted legacy text column.
		return FromAny(string(trimmed))
	}
	return FromAny(value)
}

func serializedFromTime(instant time.Time) Serialized {
	return Serialized{Seconds: instant.Unix(), Nanoseconds: int64(instant.Nanosecond())}
}

// FormatDate renders raw as dd/mm/yyyy in loc, or "Fecha no disponible".
func FormatDate(raw Raw, loc *time.Location) string {
	instant, ok := Normalize(raw, loc)
	if !ok {
		return unavailableLabel
	}
	return instant.Format("02/01/2006")
}
