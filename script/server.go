// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

package script

import (
	"github.com/dop251/goja"

	"github.com/deckhand-dev/deckhand"
)

// serverModule builds the server capability namespace. update() is the
// push path from script to clients: it turns one object into a widget
// update notification for every subscriber of this remote.
func (r *Runtime) serverModule() *goja.Object {
	m := r.vm.NewObject()
	m.Set("update", func(call goja.FunctionCall) goja.Value {
		exported, ok := call.Argument(0).Export().(map[string]any)
		if !ok {
			r.throwType("server.update: argument must be an object")
		}
		id, ok := exported["id"].(string)
		if !ok || id == "" {
			r.throwType("server.update: object must carry a widget id")
		}
		props := make(map[string]any, len(exported)-1)
		for key, value := range exported {
			if key == "id" {
				continue
			}
			props[key] = value
		}
		r.host.Publish(deckhand.UpdateNotification{
			Widget:     id,
			Properties: props,
		})
		return goja.Undefined()
	})
	return m
}
