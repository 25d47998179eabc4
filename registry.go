// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

package deckhand

import (
	"context"
	"log/slog"
	"sort"
)

// Registry maps remote identifiers to worker handles. It is built once at
// startup from the full set of loaded descriptors and read-only
// afterwards; a remote whose runtime fails to start is recorded as
// unavailable and the rest of the server keeps running.
type Registry struct {
	handles     map[RemoteId]*Handle
	unavailable map[RemoteId]error
	logger      *slog.Logger
}

// NewRegistry constructs one worker per descriptor and waits for each
// runtime to initialize. Startup failures are per-remote, never fatal to
// the process.
func NewRegistry(descriptors []*Descriptor, factory RuntimeFactory, opts ...Option) *Registry {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	r := &Registry{
		handles:     make(map[RemoteId]*Handle, len(descriptors)),
		unavailable: make(map[RemoteId]error),
		logger:      options.logger,
	}

	for _, desc := range descriptors {
		w := newWorker(desc, factory, options)
		if err := <-w.initCh; err != nil {
			r.logger.Error("remote unavailable",
				"remote", desc.Id,
				"error", err)
			r.unavailable[desc.Id] = err
			continue
		}
		r.handles[desc.Id] = &Handle{w: w}
		r.logger.Info("remote started", "remote", desc.Id)
	}

	return r
}

// Get resolves a remote id to its handle. ErrRemoteUnavailable is
// returned for remotes that failed to start, ErrRemoteNotFound for ids
// that were never loaded.
func (r *Registry) Get(id RemoteId) (*Handle, error) {
	if h, ok := r.handles[id]; ok {
		return h, nil
	}
	if _, ok := r.unavailable[id]; ok {
		return nil, ErrRemoteUnavailable
	}
	return nil, ErrRemoteNotFound
}

// Remotes returns the ids of all live remotes in sorted order.
func (r *Registry) Remotes() []RemoteId {
	ids := make([]RemoteId, 0, len(r.handles))
	for id := range r.handles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Submit resolves the remote and submits the request through its handle.
func (r *Registry) Submit(ctx context.Context, id RemoteId, request *ActionRequest) (*ActionResult, error) {
	h, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return h.Submit(ctx, request)
}

// Subscribe resolves the remote and attaches a new update subscriber.
func (r *Registry) Subscribe(id RemoteId) (*Subscription, error) {
	h, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return h.Subscribe(), nil
}

// Close stops every worker and waits for each to terminate. Remotes are
// independent, so order does not matter.
func (r *Registry) Close() {
	for id, h := range r.handles {
		h.w.stop()
		r.logger.Debug("remote stopped", "remote", id)
	}
}
