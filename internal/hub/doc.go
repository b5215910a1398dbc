// Package hub implements the Subscription Registry and the Fan-out
// Dispatcher. It owns the connection → symbol-set mapping and consumes the
// Tick Engine's update channel, delivering each serialized envelope only to
// the connections whose interest set contains the symbol. Index updates are
// broadcast to every connection. Delivery is best-effort: a closed or
// backlogged connection drops the frame, reported as a DeliveryResult.
package hub
