// Package rule contains the pure business logic for automation rules:
// condition-tree evaluation and action parameter decoding. Rules are
// administrator-authored data; this package gives that data a closed,
// exhaustively checkable shape.
package rule

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Supported leaf operators.
const (
	OpEq       = "eq"
	OpNeq      = "neq"
	OpGt       = "gt"
	OpGte      = "gte"
	OpLt       = "lt"
	OpLte      = "lte"
	OpIn       = "in"
	OpContains = "contains"
)

// Condition is a boolean combination of leaf predicates over an event
// snapshot. Exactly one of All, Any, or a (Field, Op, Value) leaf should be
// set; a zero Condition matches unconditionally.
type Condition struct {
	All   []Condition `json:"all,omitempty"`
	Any   []Condition `json:"any,omitempty"`
	Field string      `json:"field,omitempty"`
	Op    string      `json:"op,omitempty"`
	Value any         `json:"value,omitempty"`
}

// IsEmpty reports whether the condition has no constraints.
func (c Condition) IsEmpty() bool {
	return len(c.All) == 0 && len(c.Any) == 0 && c.Field == ""
}

// ParseConditions decodes a stored condition tree. An empty or "null"
// payload yields the match-all condition.
func ParseConditions(raw string) (Condition, error) {
	if strings.TrimSpace(raw) == "" || raw == "null" {
		return Condition{}, nil
	}
	var c Condition
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return Condition{}, fmt.Errorf("failed to parse conditions: %w", err)
	}
	if err := c.validate(); err != nil {
		return Condition{}, err
	}
	return c, nil
}

func (c Condition) validate() error {
	if c.IsEmpty() {
		return nil
	}
	for _, sub := range c.All {
		if err := sub.validate(); err != nil {
			return err
		}
	}
	for _, sub := range c.Any {
		if err := sub.validate(); err != nil {
			return err
		}
	}
	if c.Field != "" {
		switch c.Op {
		case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte, OpIn, OpContains:
		default:
			return fmt.Errorf("unknown operator %q for field %s", c.Op, c.Field)
		}
	}
	return nil
}

// Evaluate reports whether the condition matches the snapshot. now anchors
// relative time values such as "+3d". A leaf over an absent field is false;
// an empty tree matches unconditionally.
func Evaluate(c Condition, snapshot map[string]any, now time.Time) bool {
	if c.IsEmpty() {
		return true
	}
	if len(c.All) > 0 {
		for _, sub := range c.All {
			if !Evaluate(sub, snapshot, now) {
				return false
			}
		}
		return true
	}
	if len(c.Any) > 0 {
		for _, sub := range c.Any {
			if Evaluate(sub, snapshot, now) {
				return true
			}
		}
		return false
	}
	actual, ok := snapshot[c.Field]
	if !ok || actual == nil {
		return false
	}
	return evalLeaf(actual, c.Op, c.Value, now)
}

func evalLeaf(actual any, op string, expected any, now time.Time) bool {
	switch op {
	case OpEq:
		return looseEqual(actual, expected)
	case OpNeq:
		return !looseEqual(actual, expected)
	case OpGt, OpGte, OpLt, OpLte:
		cmp, ok := compare(actual, expected, now)
		if !ok {
			return false
		}
		switch op {
		case OpGt:
			return cmp > 0
		case OpGte:
			return cmp >= 0
		case OpLt:
			return cmp < 0
		default:
			return cmp <= 0
		}
	case OpIn:
		list, ok := expected.([]any)
		if !ok {
			return false
		}
		for _, v := range list {
			if looseEqual(actual, v) {
				return true
			}
		}
		return false
	case OpContains:
		if s, ok := actual.(string); ok {
			return strings.Contains(s, fmt.Sprint(expected))
		}
		if list, ok := actual.([]any); ok {
			for _, v := range list {
				if looseEqual(v, expected) {
					return true
				}
			}
		}
		return false
	}
	return false
}

// looseEqual compares snapshot and rule values, tolerating the numeric
// type mixing JSON decoding produces (float64 vs int).
func looseEqual(a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// compare orders two values: numerically when both are numbers, as
// timestamps when both parse as times, lexically otherwise.
func compare(actual, expected any, now time.Time) (int, bool) {
	af, aok := toFloat(actual)
	bf, bok := toFloat(expected)
	if aok && bok {
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}

	at, aok := toTime(actual, now)
	bt, bok := toTime(expected, now)
	if aok && bok {
		switch {
		case at.Before(bt):
			return -1, true
		case at.After(bt):
			return 1, true
		default:
			return 0, true
		}
	}

	return strings.Compare(fmt.Sprint(actual), fmt.Sprint(expected)), true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// toTime parses RFC3339 timestamps, bare dates, and relative offsets of the
// form "+3d" / "-12h" / "+90m" anchored at now.
func toTime(v any, now time.Time) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	if d, ok := parseRelative(s); ok {
		return now.Add(d), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func parseRelative(s string) (time.Duration, bool) {
	if len(s) < 3 || (s[0] != '+' && s[0] != '-') {
		return 0, false
	}
	unit := s[len(s)-1]
	n, err := strconv.Atoi(s[1 : len(s)-1])
	if err != nil {
		return 0, false
	}
	var d time.Duration
	switch unit {
	case 'd':
		d = time.Duration(n) * 24 * time.Hour
	case 'h':
		d = time.Duration(n) * time.Hour
	case 'm':
		d = time.Duration(n) * time.Minute
	default:
		return 0, false
	}
	if s[0] == '-' {
		d = -d
	}
	return d, true
}
