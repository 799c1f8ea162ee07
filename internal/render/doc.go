// Package render runs slideshow render attempts.
//
// An attempt validates the request, downloads the five images and the audio
// track concurrently into a private workspace, encodes them with a crossfade
// graph and publishes the result. The workspace is removed on every exit
// path.
package render
