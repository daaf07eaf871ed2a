/*
Package session owns the local snapshot of authoritative remote state.

The Synchronizer subscribes to inbound frames from a data channel,
decodes and reduces them on a single event loop, and publishes each new
snapshot atomically to observers. It also drives the save/load protocol:
reliable SAVE_REQ commands awaiting a correlated SAVE_ACK, and LOAD_REQ
commands carrying a previously exported snapshot back to the authority.

Exactly one loop goroutine mutates the snapshot, so reducers never run
concurrently and observers never see a torn state.
*/
package session
