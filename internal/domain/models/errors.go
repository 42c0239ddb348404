package models

import (
	"errors"
	"fmt"
)

var (
	// ErrGateway matches every *GatewayError via errors.Is.
	ErrGateway = errors.New("gateway error")
	// ErrInsufficientData is returned when a candle series is empty.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrInvalidPeriod is returned for EMA periods below 1.
	ErrInvalidPeriod = errors.New("invalid ema period")
	// ErrPersistence matches every *PersistenceError via errors.Is.
	ErrPersistence = errors.New("persistence error")
)

// GatewayError describes a failed call to the exchange.
type GatewayError struct {
	Op         string
	Instrument InstrumentID
	Status     int    // HTTP status, 0 when the request never completed
	Code       int    // exchange error code, if any
	Msg        string // exchange error message, if any
	Err        error
}

func (e *GatewayError) Error() string {
	s := "gateway " + e.Op
	if e.Instrument != "" {
		s += " " + string(e.Instrument)
	}
	if e.Status != 0 {
		s += fmt.Sprintf(": status %d", e.Status)
	}
	if e.Msg != "" {
		s += fmt.Sprintf(" (code %d: %s)", e.Code, e.Msg)
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *GatewayError) Unwrap() error { return e.Err }

func (e *GatewayError) Is(target error) bool { return target == ErrGateway }

// PersistenceError describes a failed write of a result to a sink.
type PersistenceError struct {
	Sink string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist to %s: %v", e.Sink, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
