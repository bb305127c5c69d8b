package config

import (
	"fmt"
)

// An AttributeMap is a convenience wrapper for pulling out typed information
// from a map of model-specific attributes.
type AttributeMap map[string]interface{}

// Has returns whether the given name is in the map.
func (am AttributeMap) Has(name string) bool {
	_, has := am[name]
	return has
}

// Bool attempts to return a boolean present in the map with
// the given name; returns the given default otherwise.
func (am AttributeMap) Bool(name string, def bool) bool {
	x, has := am[name]
	if !has {
		return def
	}
	if v, ok := x.(bool); ok {
		return v
	}
	panic(fmt.Errorf("wanted a bool for (%s) but got (%v) %T", name, x, x))
}

// Float64 attempts to return a float64 present in the map with
// the given name; returns the given default otherwise.
func (am AttributeMap) Float64(name string, def float64) float64 {
	x, has := am[name]
	if !has {
		return def
	}
	switch v := x.(type) {
	case int:
		return float64(v)
	case float64:
		return v
	}
	panic(fmt.Errorf("wanted a float64 for (%s) but got (%v) %T", name, x, x))
}

// Int attempts to return an integer present in the map with
// the given name; returns the given default otherwise. JSON decodes
// numbers as float64 so those are converted when integral.
func (am AttributeMap) Int(name string, def int) int {
	x, has := am[name]
	if !has {
		return def
	}
	switch v := x.(type) {
	case int:
		return v
	case float64:
		if v == float64(int64(v)) {
			return int(v)
		}
	}
	panic(fmt.Errorf("wanted an int for (%s) but got (%v) %T", name, x, x))
}

// String attempts to return a string present in the map with
// the given name; returns an empty string otherwise.
func (am AttributeMap) String(name string) string {
	x, has := am[name]
	if !has || x == nil {
		return ""
	}
	if v, ok := x.(string); ok {
		return v
	}
	panic(fmt.Errorf("wanted a string for (%s) but got (%v) %T", name, x, x))
}

// IntSlice attempts to return a slice of ints present in the map with
// the given name; returns an empty slice otherwise.
func (am AttributeMap) IntSlice(name string) []int {
	x, has := am[name]
	if !has {
		return []int{}
	}
	if slice, ok := x.([]interface{}); ok {
		ints := make([]int, 0, len(slice))
		for _, v := range slice {
			switch vv := v.(type) {
			case int:
				ints = append(ints, vv)
			case float64:
				ints = append(ints, int(vv))
			default:
				panic(fmt.Errorf("values in (%s) need to be ints but got (%v) %T", name, v, v))
			}
		}
		return ints
	}
	panic(fmt.Errorf("wanted a []int for (%s) but got (%v) %T", name, x, x))
}

// StringSlice attempts to return a slice of strings present in the map with
// the given name; returns an empty slice otherwise.
func (am AttributeMap) StringSlice(name string) []string {
	x, has := am[name]
	if !has {
		return []string{}
	}
	if slice, ok := x.([]string); ok {
		return slice
	}
	if slice, ok := x.([]interface{}); ok {
		strings := make([]string, 0, len(slice))
		for _, v := range slice {
			vv, ok := v.(string)
			if !ok {
				panic(fmt.Errorf("values in (%s) need to be strings but got (%v) %T", name, v, v))
			}
			strings = append(strings, vv)
		}
		return strings
	}
	panic(fmt.Errorf("wanted a []string for (%s) but got (%v) %T", name, x, x))
}
