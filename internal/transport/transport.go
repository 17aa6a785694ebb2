// SPDX-License-Identifier: MIT
//
// Package transport streams live analysis frames to consumers.
package transport

// Transport carries analysis results to a consumer. Implementations must
// be safe for concurrent use; Send must never block the audio callback path.
type Transport interface {
	Send(data any) error
	Close() error
}

// Frame is one live analysis update pushed through a Transport.
type Frame struct {
	RMS   float64   `json:"rms"`
	Bands []float64 `json:"bands"`
}
