package docstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"
)

// TimestampLayout is how server timestamps are written into documents. The
// fixed width keeps lexicographic and chronological order identical.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z"

type serverTimestamp struct{}

// ServerTimestamp is a field value the store replaces with its own clock at
// write time.
var ServerTimestamp any = serverTimestamp{}

// FormatTimestamp renders t the way stores persist server timestamps.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Clock hands out strictly increasing timestamps.
type Clock struct {
	mu   sync.Mutex
	last time.Time
}

// Next returns t, or the smallest instant after the previous result when t
// does not advance the clock.
func (c *Clock) Next(t time.Time) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t = t.UTC()
	if !t.After(c.last) {
		t = c.last.Add(time.Nanosecond)
	}
	c.last = t
	return t
}

// Resolve returns a copy of fields with ServerTimestamp values replaced by now.
func Resolve(fields Fields, now time.Time) Fields {
	resolved := make(Fields, len(fields))
	stamp := FormatTimestamp(now)
	for k, v := range fields {
		if _, ok := v.(serverTimestamp); ok {
			resolved[k] = stamp
			continue
		}
		resolved[k] = v
	}
	return resolved
}

// Encode validates field names and marshals fields into a JSON object.
func Encode(fields Fields) (json.RawMessage, error) {
	for k := range fields {
		if !fieldPattern.MatchString(k) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidField, k)
		}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// Merge overlays patch onto the JSON object base.
func Merge(base json.RawMessage, patch Fields) (json.RawMessage, error) {
	merged := map[string]json.RawMessage{}
	if len(base) > 0 {
		if err := json.Unmarshal(base, &merged); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
	}
	encoded, err := Encode(patch)
	if err != nil {
		return nil, err
	}
	var patched map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &patched); err != nil {
		return nil, err
	}
	for k, v := range patched {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// Sort orders docs in place by the query's sort keys. Ties keep their
// incoming order, which stores hand over in insertion order.
func Sort(docs []Document, orders []OrderBy) {
	if len(orders) == 0 {
		return
	}
	keys := make([]map[string]json.RawMessage, len(docs))
	for i, d := range docs {
		m := map[string]json.RawMessage{}
		_ = json.Unmarshal(d.Data, &m)
		keys[i] = m
	}
	idx := make([]int, len(docs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		for _, o := range orders {
			c := compareRaw(keys[idx[a]][o.Field], keys[idx[b]][o.Field])
			if c == 0 {
				continue
			}
			if o.Direction == Descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	sorted := make([]Document, len(docs))
	for i, j := range idx {
		sorted[i] = docs[j]
	}
	copy(docs, sorted)
}

// compareRaw orders missing < numbers < strings < anything else.
func compareRaw(a, b json.RawMessage) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch ra {
	case 1:
		fa, _ := strconv.ParseFloat(string(a), 64)
		fb, _ := strconv.ParseFloat(string(b), 64)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case 2:
		var sa, sb string
		_ = json.Unmarshal(a, &sa)
		_ = json.Unmarshal(b, &sb)
		switch {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		}
		return 0
	}
	return bytes.Compare(a, b)
}

func rank(v json.RawMessage) int {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return 0
	}
	switch v[0] {
	case '"':
		return 2
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return 1
	}
	return 3
}
