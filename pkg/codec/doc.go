/*
Package codec translates between wire frames and domain envelopes.

The wire format is UTF-8 JSON. Inbound objects come in two dialects,
`{"type": ..., "data": ...}` and `{"topic": ..., "payload": ...}`, and
the transport occasionally wraps the whole object in `{"payload": ...}`
(an interoperability quirk of evolving SDK signatures). Normalization of
both shapes lives here so the rest of the system never sees it.
*/
package codec
