package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// ImportRequest asks the worker to load a pair of CSV datasets into the
// SQLite snapshot. Paths must be readable by the worker process.
type ImportRequest struct {
	OrdersPath      string    `json:"orders_path"`
	GeolocationPath string    `json:"geolocation_path"`
	ExportReport    bool      `json:"export_report"`
	RequestedAt     time.Time `json:"requested_at"`
}

var ErrIncompleteRequest = errors.New("import request needs both dataset paths")

// ErrPermanent marks handler failures that would fail the same way on
// every redelivery. Such messages are dropped instead of requeued.
var ErrPermanent = errors.New("permanent failure")

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() []error { return []error{e.err, ErrPermanent} }

// Permanent wraps err so that errors.Is(err, ErrPermanent) holds while the
// original chain stays reachable. A nil err stays nil.
func Permanent(err error) error {
	if err == nil || errors.Is(err, ErrPermanent) {
		return err
	}
	return &permanentError{err: err}
}

// shouldRequeue reports whether a failed delivery is worth another attempt.
func shouldRequeue(err error) bool {
	return !errors.Is(err, ErrPermanent) && !errors.Is(err, ErrIncompleteRequest)
}

// NewImportRequest creates a request stamped with the current time
func NewImportRequest(ordersPath, geolocationPath string, exportReport bool) *ImportRequest {
	return &ImportRequest{
		OrdersPath:      ordersPath,
		GeolocationPath: geolocationPath,
		ExportReport:    exportReport,
		RequestedAt:     time.Now(),
	}
}

// Validate checks that both dataset paths are present
func (m *ImportRequest) Validate() error {
	if m.OrdersPath == "" || m.GeolocationPath == "" {
		return ErrIncompleteRequest
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *ImportRequest) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ImportRequestFromJSON decodes a message and validates it
func ImportRequestFromJSON(data []byte) (*ImportRequest, error) {
	var msg ImportRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
