// Package netsock provides the blocking TCP primitives torilate builds on:
// connect, send-all, receive and an idempotent close, plus address-kind
// classification and network byte order helpers.
//
// Every transport failure is a *failure.Error whose message carries the
// platform error number and its symbolic name where one is available.
package netsock
