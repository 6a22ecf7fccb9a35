package dispatch

import (
	jsoniter "github.com/json-iterator/go"
)

// Outcome is the result of one goto action.
type Outcome struct {
	// Status is true iff the navigation settled without error.
	Status bool
	// Err is the navigator's error, unmodified. It is nil when Status is true.
	Err error
}

// OK reports whether the navigation succeeded.
func (o Outcome) OK() bool { return o.Status }

type outcomeJSON struct {
	Status bool   `json:"status"`
	Error  string `json:"error,omitempty"`
}

// MarshalJSON renders the outcome as {"status":false,"error":"..."}; the error
// key is omitted on success.
func (o Outcome) MarshalJSON() ([]byte, error) {
	out := outcomeJSON{Status: o.Status}
	if !o.Status && o.Err != nil {
		out.Error = o.Err.Error()
	}
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(out)
}
