// Package api provides an HTTP client for the club-management REST API.
//
// # Overview
//
// A Client addresses one resource collection (for example "states") and
// exposes the four calls the console needs:
//
//   - GET  /api/<resource>       list every record
//   - GET  /api/<resource>/{id}  read one record
//   - POST /api/<resource>       create a record from {name}
//   - PUT  /api/<resource>/{id}  update a record from {name}
//
// # Client Usage
//
//	client, err := api.NewClient("127.0.0.1:8080", "states")
//	if err != nil {
//		return err
//	}
//	state, err := client.Get(ctx, "12")
//
// # Error Handling
//
// Non-2xx responses come back as *Error. When the body follows the
// {message, errors?: {<fieldKey>: {message}}} shape, Message and Fields are
// populated; Fields keeps the order the server wrote them in. Markup in server
// messages is stripped before it reaches the terminal.
//
// Transport failures are wrapped ("execute request: ...") and decode failures
// are reported as "decode response: ...". The client never retries.
//
// # Request Handling
//
// All requests set Accept: application/json, a clubdesk User-Agent and a fresh
// X-Request-ID so server logs can be matched with the console's debug log.
// The default timeout is 10 seconds; override it with WithTimeout.
package api
