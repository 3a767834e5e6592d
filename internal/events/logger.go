// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package events

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// WatermillLogger adapts zerolog to watermill.LoggerAdapter.
type WatermillLogger struct {
	logger zerolog.Logger
	fields watermill.LogFields
}

// NewWatermillLogger wraps logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewWatermillLogger(logger zerolog.Logger) *WatermillLogger {
	return &WatermillLogger{logger: logger}
}

func (w *WatermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	w.emit(w.logger.Error().Err(err), fields, msg)
}

func (w *WatermillLogger) Info(msg string, fields watermill.LogFields) {
	w.emit(w.logger.Info(), fields, msg)
}

func (w *WatermillLogger) Debug(msg string, fields watermill.LogFields) {
	w.emit(w.logger.Debug(), fields, msg)
}

func (w *WatermillLogger) Trace(msg string, fields watermill.LogFields) {
	w.emit(w.logger.Trace(), fields, msg)
}

// With returns a logger that adds fields to every entry.
func (w *WatermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	merged := make(watermill.LogFields, len(w.fields)+len(fields))
	for k, v := range w.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &WatermillLogger{logger: w.logger, fields: merged}
}

func (w *WatermillLogger) emit(e *zerolog.Event, fields watermill.LogFields, msg string) {
	for k, v := range w.fields {
		e = e.Interface(k, v)
	}
	for k, v := range fields {
		e = e.Interface(k, v)
	}
	e.Msg(msg)
}
