// Package form implements the create/edit controller behind ClubDesk's
// single-field resource screens.
//
// # Overview
//
// A Controller owns one form instance for one resource (for example "states")
// in one Mode. The screen or prompt that displays the form feeds it user input
// and renders its state; the controller performs validation, talks to the API,
// invalidates cached queries and reports outcomes.
//
// # Lifecycle
//
//	Create: Ready ──Submit──> Submitting ──> Succeeded (completes, disposed)
//	                                   └──> Failed (retry allowed)
//
//	Edit:   Loading ──Load ok──> Ready ── as above
//	                └─Load err─> FetchFailed (terminal)
//
// Validation failures never leave Idle and never reach the network.
// Submit is rejected with ErrSubmitInFlight while a request is outstanding.
//
// # Completion
//
// On success the controller invalidates the list query, plus the item query in
// Edit mode, emits exactly one success notification and then calls
// Options.OnComplete. Without a callback it navigates to Resource.ListPath.
// Cancel takes the same exit without saving.
//
// # Stale Responses
//
// Dispose, Cancel and successful completion all detach the controller.
// Phase then reports PhaseDisposed. Responses that arrive afterwards are
// dropped: no state change, no notification, no navigation. The late call
// returns ErrDisposed.
//
// # Server Errors
//
// When the server attributes a failure to fields, the first one in document
// order is used. Its key is turned into a label with FieldLabel
// ("states_stateKey" becomes "State") and substituted into the message, which
// is shown inline and as the error notification. Otherwise the server's
// message, or a "Failed to create state" style fallback, is shown.
// SubmissionError.Kind keeps rejections, server faults and transport
// failures apart for callers and logs.
package form
