// Package capture implements the capture handshake: the protocol that moves
// a page snapshot from the site being viewed into Ramekin and follows the
// resulting scrape job to completion.
//
// Two state machines talk over a Channel. The Opener runs beside the captured
// page: it waits for "ready" from the expected origin, sends the snapshot,
// and honours "close" and "viewRecipe" requests. The Receiver runs in the
// capture page: it announces itself, accepts one snapshot from its opener,
// creates a capture job and polls it every 500ms until the job settles.
//
//	opener                      receiver
//	  |  <-------- "ready" ------- |
//	  |  --- {type:html,...} ----> |  Waiting -> Capturing
//	  |                            |  create job, poll ...
//	  |  <------ {type:close} ---- |  Success | Error
//
// The Bookmarklet is the self-contained variant: it creates the job itself
// and renders progress as an Overlay.
package capture
