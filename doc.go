/*
Package roomsync keeps a local, render-ready copy of session state that a
remote authority owns, synchronized over a real-time data channel.

The remote side is the single writer: it broadcasts typed state messages,
and roomsync folds them into an immutable snapshot through pure reducers.
Local code never mutates the snapshot directly; it sends commands (cart
actions, save/load requests) back over the channel and waits for the
authority's broadcast to reflect them. This Hexagonal Architecture keeps
the synchronization core independent of the transport: the same session
runs over a websocket, an in-process loopback, or any other adapter that
implements ports.DataChannel.

The message vocabulary is open ended. Reducers are registered per message
kind (and optionally per topic); kinds nobody registered are skipped, so
a client built against an older vocabulary keeps working as the authority
grows new message types.

Two state variants ship in pkg/variants: commerce, a storefront with a
catalog, cart and order receipts; and arcade, a game dashboard fed by
wholesale state broadcasts on a dedicated topic.
*/
package roomsync
