// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-webauthn-client.
//
// go-webauthn-client is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package events defines the lifecycle notifications emitted by the
// ceremony orchestrator and the transport adapter. Notifications are
// fire-and-forget: no observer return value influences control flow.
package events

// Type names a lifecycle notification.
type Type string

const (
	// RegisterStart is emitted when a registration flow begins.
	RegisterStart Type = "register.start"

	// RegisterSuccess is emitted when a registration flow completes.
	RegisterSuccess Type = "register.success"

	// RegisterError is emitted when a registration flow aborts.
	RegisterError Type = "register.error"

	// LoginStart is emitted when an authentication flow begins.
	LoginStart Type = "login.start"

	// LoginSuccess is emitted when an authentication flow completes.
	LoginSuccess Type = "login.success"

	// LoginError is emitted when an authentication flow aborts.
	LoginError Type = "login.error"

	// UserPresenceStart brackets the start of a credential collaborator
	// invocation, during which the user may be prompted for presence or
	// verification.
	UserPresenceStart Type = "user-presence.start"

	// UserPresenceDone brackets the end of a credential collaborator
	// invocation.
	UserPresenceDone Type = "user-presence.done"

	// Debug carries fine-grained diagnostics tagged with a Subtype.
	Debug Type = "debug"
)

// Debug event subtypes.
const (
	// SubtypeOptions carries the outgoing ceremony options.
	SubtypeOptions = "options"

	// SubtypeSendRaw carries the serialized request before transmission.
	SubtypeSendRaw = "send-raw"

	// SubtypeResponseRaw carries the raw reply body.
	SubtypeResponseRaw = "response-raw"

	// SubtypeResponse carries the parsed reply message.
	SubtypeResponse = "response"

	// SubtypeSendError carries a transport-level send failure.
	SubtypeSendError = "send-error"
)

// Event is a single lifecycle notification.
type Event struct {
	// Type names the notification.
	Type Type

	// FlowID correlates every event emitted by one flow invocation.
	FlowID string

	// Subtype tags Debug events with the kind of payload carried.
	Subtype string

	// Payload is notification-specific data (a message, raw wire text,
	// or an error description).
	Payload any
}

// Observer receives lifecycle notifications.
type Observer interface {
	// Notify delivers one event. Implementations must not block.
	Notify(event Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// Notify delivers the event to the wrapped function.
func (f ObserverFunc) Notify(event Event) {
	f(event)
}

// Discard is an Observer that drops every event.
var Discard Observer = ObserverFunc(func(Event) {})
