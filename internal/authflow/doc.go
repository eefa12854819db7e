// Package authflow drives the Seedr device-authorization handshake for
// chat users.
//
// The flow is a per-user state machine advanced only by discrete user
// actions: starting the flow requests a device code and registers a
// session; each "check now" action performs exactly one authorize call
// against the provider. There is no internal polling loop and no background
// timer, so a slow provider never blocks the transport.
//
// A session resolves by exactly one of: successful link (token written to
// the credential store), expiry, explicit cancellation, or a provider
// error. Restarting the flow replaces any existing session for that user.
package authflow
