/*
Package ports defines the interfaces between the roomsync core and the
outside world (Hexagonal Architecture).

The core never talks to a transport, a store, or the filesystem directly;
adapters implement these interfaces and are wired in by the host.
*/
package ports
