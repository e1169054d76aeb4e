// Package token inspects bearer credentials without validating them.
//
// The credential is opaque to the client and its integrity is the server's
// responsibility; this package only peeks at unverified JWT claims for
// hygiene (dropping a clearly expired cached session at restore) and for
// display. A credential that is not a parseable JWT is simply treated as
// claimless — opaque tokens remain fully supported.
package token
