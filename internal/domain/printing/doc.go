// Package printing implements the durable print job queue. Jobs are outbox
// rows keyed by a server-generated token and polled over HTTP by the store's
// print agent; the agent reports outcomes back per token.
package printing
