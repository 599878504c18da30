// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pedal

import "strings"

// LineFramer turns arbitrary byte-stream chunks into complete text lines.
// A trailing fragment without a terminator is kept until a later chunk
// completes it. A framer lives as long as its connection; call Reset on
// reconnect.
type LineFramer struct {
	buffer strings.Builder
}

// NewLineFramer creates an empty framer
func NewLineFramer() *LineFramer {
	return &LineFramer{}
}

// Feed appends chunk and returns every line it completed, in order, without
// the "\n" or "\r\n" terminator.
func (f *LineFramer) Feed(chunk []byte) []string {
	if len(chunk) == 0 {
		return nil
	}
	f.buffer.Write(chunk)

	data := f.buffer.String()
	last := strings.LastIndexByte(data, '\n')
	if last < 0 {
		return nil
	}

	lines := strings.Split(data[:last], "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	residual := data[last+1:]
	f.buffer.Reset()
	f.buffer.WriteString(residual)

	return lines
}

// Pending returns the buffered partial line
func (f *LineFramer) Pending() string {
	return f.buffer.String()
}

// Reset discards any buffered partial line
func (f *LineFramer) Reset() {
	f.buffer.Reset()
}
