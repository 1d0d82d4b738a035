// Package capture decides when a plate that has been seen stably across
// frames should be committed.
//
// The decision is a small state machine over one candidate plate. Step is the
// pure transition function; Tracker owns a State and applies Step to each
// observation.
//
// # Rules
//
// Rules are applied in this order for every processed frame:
//
//  1. While a cooldown is running the frame is ignored and the counter is
//     decremented. The frame that brings it to zero is also ignored.
//  2. A frame with a plate resets the no-plate counter. The first plate
//     starts tracking; the same plate replaces the best frame only on a
//     strictly higher score; a different plate commits the current candidate
//     and starts tracking the new one.
//  3. A frame without a plate increments the no-plate counter. Once it
//     reaches Config.NoPlateFrames the candidate is committed.
//
// A commit emits an Event only when the best score is at least
// Config.MinScore, and then starts a cooldown of Config.CooldownFrames.
// Candidates below the threshold are dropped without a cooldown.
//
// When a plate change commits into a cooldown, the new plate is still kept
// as the candidate. It is frozen by rule 1 and tracking resumes once the
// cooldown ends.
package capture
