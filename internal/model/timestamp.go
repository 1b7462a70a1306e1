package model

import (
	"fmt"
	"strconv"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05"

// Timestamp is a created_at value as the simulator stored it.
// The column holds integers (simulation steps or unix seconds), reals,
// text or DATETIME values depending on the platform, so the raw form is kept
// for display and a numeric key is kept when one exists.
type Timestamp struct {
	text    string
	num     float64
	numeric bool
	valid   bool
}

// Unix builds a numeric timestamp.
func Unix(sec int64) Timestamp {
	return Timestamp{text: strconv.FormatInt(sec, 10), num: float64(sec), numeric: true, valid: true}
}

// Text builds a textual timestamp.
func Text(s string) Timestamp { return Timestamp{text: s, valid: true} }

// Scan implements sql.Scanner.
func (t *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = Timestamp{}
	case int64:
		*t = Unix(v)
	case float64:
		*t = Timestamp{text: strconv.FormatFloat(v, 'f', -1, 64), num: v, numeric: true, valid: true}
	case string:
		*t = Text(v)
	case []byte:
		*t = Text(string(v))
	case time.Time:
		u := v.UTC()
		*t = Timestamp{text: u.Format(timestampLayout), num: float64(u.UnixNano()) / 1e9, numeric: true, valid: true}
	default:
		return fmt.Errorf("unsupported created_at type %T", src)
	}
	return nil
}

// Valid reports whether a value was present.
func (t Timestamp) Valid() bool { return t.valid }

// Before orders timestamps the way SQLite orders mixed column values:
// NULL first, then numbers, then text.
func (t Timestamp) Before(o Timestamp) bool {
	if t.valid != o.valid {
		return !t.valid
	}
	if t.numeric != o.numeric {
		return t.numeric
	}
	if t.numeric {
		return t.num < o.num
	}
	return t.text < o.text
}

func (t Timestamp) String() string {
	if !t.valid {
		return "-"
	}
	return t.text
}
