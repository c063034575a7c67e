// Package bridge connects the looper controller to the external renderer.
//
// The renderer lives in its own execution context and is reachable only by
// asynchronous messages. A Bridge owns one Transport: commands go out with
// Send, request/reply pairs go out with Request and come back as a
// Deferred, and every other event is forwarded on the Events channel.
//
// Commands sent before the transport is started, or without a transport
// at all, are dropped without error.
package bridge
