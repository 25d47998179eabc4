// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

package deckhand

import (
	"log/slog"
	"time"
)

// engineOptions contains configuration shared by every worker a registry
// creates.
type engineOptions struct {
	queueSize        int           // Inbox capacity per worker
	submitRetries    int           // Enqueue attempts against a full inbox
	retryBackoff     time.Duration // Fixed pause between enqueue attempts
	subscriberBuffer int           // Buffered updates per subscriber before drops
	logger           *slog.Logger
}

func defaultOptions() *engineOptions {
	return &engineOptions{
		queueSize:        100,
		submitRetries:    10,
		retryBackoff:     5 * time.Millisecond,
		subscriberBuffer: 16,
		logger:           slog.Default(),
	}
}

// Option configures the registry and its workers.
type Option func(*engineOptions)

// WithQueueSize sets the bounded inbox capacity of each worker.
func WithQueueSize(size int) Option {
	return func(o *engineOptions) {
		if size > 0 {
			o.queueSize = size
		}
	}
}

// WithSubmitRetries sets how many enqueue attempts a producer makes
// against a full inbox before Submit fails with ErrBusy.
func WithSubmitRetries(retries int) Option {
	return func(o *engineOptions) {
		if retries > 0 {
			o.submitRetries = retries
		}
	}
}

// WithRetryBackoff sets the fixed pause between enqueue attempts. The
// maximum total wait a producer can experience is retries * backoff.
func WithRetryBackoff(backoff time.Duration) Option {
	return func(o *engineOptions) {
		if backoff > 0 {
			o.retryBackoff = backoff
		}
	}
}

// WithSubscriberBuffer sets the per-subscriber update buffer. A slow
// subscriber whose buffer is full loses notifications rather than
// blocking the publishing worker.
func WithSubscriberBuffer(size int) Option {
	return func(o *engineOptions) {
		if size > 0 {
			o.subscriberBuffer = size
		}
	}
}

// WithLogger configures the logger for the registry and its workers.
func WithLogger(logger *slog.Logger) Option {
	return func(o *engineOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}
