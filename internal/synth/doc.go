// Package synth talks to the remote speech-synthesis backend. A Gateway
// turns one chunk of text into a playable audio URL; the HTTP
// implementation posts form requests to a web endpoint and understands the
// backend's reverification response.
package synth
