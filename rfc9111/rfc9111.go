// Package rfc9111 implements the Cache-Control field of HTTP Caching (RFC 9111):
// parsing the directives a client sends and generating the directives an origin
// server attaches to a response held in memory.
//
// Files are named after the section they implement.
package rfc9111
