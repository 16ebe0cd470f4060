// Package msgs defines the typed envelope exchanged between relay
// servers and their clients, and all message schemas carried by it.
//
// Every message is identified by a 32-bit type id composed of a kind
// (command or event), a group and an id within the group. Replies share
// the id of their request with the reply bit set.
package msgs
