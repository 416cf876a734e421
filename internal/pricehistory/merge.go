package pricehistory

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"
)

// MaxEntries caps the merged history.
const MaxEntries = 100

// Point is a raw price observation as reported upstream.
type Point struct {
	Price float64 `json:"price"`
	Date  string  `json:"date"`
}

// UnmarshalJSON accepts the price as a number or a numeric string.
func (p *Point) UnmarshalJSON(b []byte) error {
	var raw struct {
		Price json.RawMessage `json:"price"`
		Date  string          `json:"date"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	price, err := DecodePrice(raw.Price)
	if err != nil {
		return err
	}
	*p = Point{Price: price, Date: raw.Date}
	return nil
}

// DecodePrice reads a JSON price sent as a number, a quoted number or null.
// Quoted values that are not numbers, such as "", read as 0.
func DecodePrice(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(s, ",", ".")), 64)
		if err != nil {
			return 0, nil
		}
		return v, nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, err
	}
	return v, nil
}

// Series is the price data of one vendor record.
type Series struct {
	Store   string
	History []Point
	Current *Point
}

// Entry is a merged price observation.
type Entry struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
	Store string    `json:"store"`
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate accepts the date formats the catalog is known to emit.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Merge flattens every series into one history, newest first, unique per
// (date, store) with the first occurrence kept, capped at MaxEntries. A current
// price without a usable date is stamped with fetchedAt. History points with
// unusable dates are dropped.
func Merge(series []Series, fetchedAt time.Time) []Entry {
	all := make([]Entry, 0)
	for _, s := range series {
		for _, p := range s.History {
			d, ok := ParseDate(p.Date)
			if !ok {
				continue
			}
			all = append(all, Entry{Date: d, Price: p.Price, Store: s.Store})
		}
		if s.Current != nil {
			d, ok := ParseDate(s.Current.Date)
			if !ok {
				d = fetchedAt.UTC()
			}
			all = append(all, Entry{Date: d, Price: s.Current.Price, Store: s.Store})
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Date.After(all[j].Date)
	})

	type key struct {
		date  int64
		store string
	}
	seen := make(map[key]struct{}, len(all))
	out := make([]Entry, 0, min(len(all), MaxEntries))
	for _, e := range all {
		k := key{date: e.Date.UnixNano(), store: e.Store}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e)
		if len(out) == MaxEntries {
			break
		}
	}
	return out
}
