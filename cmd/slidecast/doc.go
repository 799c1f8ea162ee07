// Command slidecast renders a five image slideshow with a soundtrack from the
// command line, prints the filter graph for a configuration, and obtains the
// Google Drive refresh token used by the gdrive storage provider.
package main
