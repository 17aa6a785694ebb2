// SPDX-License-Identifier: MIT
package transport

import "audioviz/internal/log"

// LoggingTransport writes each frame to the debug log. Useful when
// running headless without any WebSocket consumers.
type LoggingTransport struct{}

func NewLoggingTransport() *LoggingTransport {
	return &LoggingTransport{}
}

// Send logs the frame at debug level and never fails.
func (lt *LoggingTransport) Send(data any) error {
	log.Debugf("transport: frame %+v", data)
	return nil
}

// Close is a no-op.
func (lt *LoggingTransport) Close() error {
	return nil
}

var _ Transport = (*LoggingTransport)(nil)
