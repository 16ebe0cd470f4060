// Package relay forwards bulk transfers of a local bus device to remote
// clients.
//
// A Server owns the Transport of one bus and serves ReadRequest and
// WriteRequest commands from sessions accepted over TCP, WebSocket or
// MQTT. A Client implements transport.Handle on top of a session, so
// codecs work against a remote bus the same way as a local one.
package relay
