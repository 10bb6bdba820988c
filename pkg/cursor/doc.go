// Package cursor advances a reveal position along a path, one tick at a time.
//
// # Overview
//
// A [Cursor] owns a fixed path of length L and a floating-point position
// over it. Each call to [Cursor.Tick] moves the position forward; the
// integer part of the position is the reveal count, the number of leading
// path elements a renderer should draw in their revealed style.
//
// # Speed
//
// Without a loudness reading (the zero [Signal]) the cursor moves by
// [Config.Step] per tick. With a reading ([Level]) the value is clamped to
// [0, LoudnessCeiling]; below [Config.SilenceThreshold] the cursor stalls
// completely, otherwise it moves by
//
//	(BaseSpeed + v/LoudnessCeiling*BoostMax) * Multiplier
//
// [FitBaseSpeed] picks a base speed so that a run at average loudness ends
// close to the end of an audio track.
//
// # States
//
//	Idle --Start--> Running --Tick (count reaches L-1)--> Complete
//	Running --Start--> Running
//	Complete --Start--> Running
//
// Start on an empty path does nothing. Tick outside Running does nothing.
// The reveal count never decreases within a run and never exceeds L-1.
//
// # Concurrency
//
// A Cursor is not safe for concurrent use. The goroutine that drives Tick is
// expected to read the reveal count too, typically once per rendered frame.
package cursor
