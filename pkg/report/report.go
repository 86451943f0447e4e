// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

// Package report builds the ordered result records of a batch run.
//
// One explicit view type exists per entity; there is no reflection-driven
// serialization. Records append in the exact order the triggering commands
// ran, which output consumers rely on.
package report

import (
	"encoding/json"
	"io"
)

// Record is one visible result of a command.
type Record struct {
	Command   string      `json:"command"`
	Timestamp int         `json:"timestamp"`
	Output    interface{} `json:"output"`
}

// ErrorOutput is the standard error payload of a failed command.
type ErrorOutput struct {
	Timestamp   int    `json:"timestamp"`
	Description string `json:"description"`
}

// DeletionOutput reports a deleteAccount outcome. Exactly one of Success
// or Error is set.
type DeletionOutput struct {
	Timestamp int    `json:"timestamp"`
	Success   string `json:"success,omitempty"`
	Error     string `json:"error,omitempty"`
}

// NotSupportedOutput reports a report flavor an account kind cannot serve.
type NotSupportedOutput struct {
	Error string `json:"error"`
}

// Builder accumulates records in processing order.
type Builder struct {
	records []*Record
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Append adds a record with an arbitrary output payload.
func (b *Builder) Append(command string, timestamp int, output interface{}) {
	b.records = append(b.records, &Record{
		Command:   command,
		Timestamp: timestamp,
		Output:    output,
	})
}

// Error adds the standard error-shaped record.
func (b *Builder) Error(command string, timestamp int, description string) {
	b.Append(command, timestamp, ErrorOutput{Timestamp: timestamp, Description: description})
}

// Records returns the accumulated records in order.
func (b *Builder) Records() []*Record {
	return b.records
}

// WriteTo writes the records as an indented JSON array.
func (b *Builder) WriteTo(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	records := b.records
	if records == nil {
		records = []*Record{}
	}
	return enc.Encode(records)
}
