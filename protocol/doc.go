// Package protocol defines the messages exchanged between the looper
// controller and the external renderer that plays loop buffers.
//
// Commands flow controller -> renderer, events flow renderer -> controller.
// Both are plain structs identified by a kebab-case type name. On the wire
// every message is a JSON envelope:
//
//	{"type": "begin-record", "payload": {"layerIndex": 1, "mode": "aligned", ...}}
package protocol
