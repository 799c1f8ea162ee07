// Package ffmpeg builds the crossfade filter graph and the encoder command
// line for a slideshow render, and runs the encoder as a supervised child
// process.
//
// BuildGraph and Encoder.Args are pure so the exact graph and argument list
// can be checked without an encoder binary. Execution goes through the
// Runner interface; ExecRunner is the real implementation.
package ffmpeg
