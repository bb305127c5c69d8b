package sensor

// A Reading is the result of invoking one sensor once. Readings are built
// fresh on every collection pass and carry either a value or a failure
// reason, never both. They deliberately carry no timestamp; collection is
// idempotent and consumers that persist readings stamp them at write time.
type Reading struct {
	Name    string      `json:"name"`
	Value   interface{} `json:"value,omitempty"`
	Unit    string      `json:"unit,omitempty"`
	Display string      `json:"display,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Failed reports whether the reading carries a failure instead of a value.
func (r Reading) Failed() bool {
	return r.Error != ""
}
