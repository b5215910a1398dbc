// Package engine implements the Tick Engine: three independent periodic tasks
// (stock, index, depth) that mutate the Market State Store and publish the
// resulting record snapshots onto a single update channel. Tickers never see
// connections; the Fan-out Dispatcher consumes the channel.
package engine
