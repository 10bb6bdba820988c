// Package audio turns a WAV track into a per-frame loudness envelope and
// plays it back through the system speaker.
//
// The envelope is the cursor's loudness source: one RMS reading per
// animation frame, computed over the channel-averaged signal. Decoding uses
// github.com/gopxl/beep/wav and playback uses github.com/gopxl/beep/speaker.
package audio
