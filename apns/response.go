package apns

import (
	"encoding/json"
	"strconv"
)

const Provider = "apns"

// ReasonUnhandledStatus is reported for statuses APNs does not document.
const ReasonUnhandledStatus = "unhandled status"

// Outcome classifies a response that reached APNs.
type Outcome int

// Outcomes
const (
	Delivered Outcome = iota
	RecipientGone
	GatewayRejected
)

func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case RecipientGone:
		return "recipient_gone"
	case GatewayRejected:
		return "gateway_rejected"
	}
	return "unknown"
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Result is the classified response from apns
type Result struct {
	Outcome    Outcome `json:"outcome"`
	APNsID     string  `json:"apns-id"`
	StatusCode int     `json:"status"`
	Token      string  `json:"token"`
	Reason     string  `json:"reason,omitempty"`
	Timestamp  int64   `json:"timestamp,omitempty"`
}

// Err returns nil when delivered, *GoneError or *RejectedError otherwise.
func (r Result) Err() error {
	switch r.Outcome {
	case Delivered:
		return nil
	case RecipientGone:
		return &GoneError{Token: r.Token, Reason: r.Reason, Timestamp: r.Timestamp}
	}
	return &RejectedError{StatusCode: r.StatusCode, Reason: r.Reason}
}

func (r Result) RecipientIdentifier() string {
	return r.Token
}

func (r Result) ExtraKeys() []string {
	return []string{"apns-id", "reason", "outcome", "timestamp"}
}

func (r Result) ExtraValue(key string) string {
	switch key {
	case "apns-id":
		return r.APNsID
	case "reason":
		return r.Reason
	case "outcome":
		return r.Outcome.String()
	case "timestamp":
		if r.Timestamp != 0 {
			return strconv.FormatInt(r.Timestamp, 10)
		}
	}
	return ""
}

func (r Result) Status() int {
	return r.StatusCode
}

func (r Result) Provider() string {
	return Provider
}

func (r Result) MarshalJSON() ([]byte, error) {
	type Alias Result
	return json.Marshal(struct {
		Provider string `json:"provider"`
		Alias
	}{
		Provider: Provider,
		Alias:    (Alias)(r),
	})
}

// ErrorResponse is the body APNs sends with a non-200 status.
type ErrorResponse struct {
	Reason    string `json:"reason"`
	Timestamp int64  `json:"timestamp,omitempty"`
}
