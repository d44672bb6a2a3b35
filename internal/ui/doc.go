// Package ui implements an interactive terminal player using bubbletea's Elm architecture.
//
// The [Model] polls the playback state on an interval and renders:
//  1. the currently playing track or episode with its progress and device
//  2. the upcoming queue as a [list.Model]
//  3. a status line for the last command or error
//
// Messages arrive through the [Msg] union. A rate-limited poll is not retried early: the next poll is scheduled after
// the server's Retry-After delay.
//
// Keyboard bindings are space (play/pause), n/p (next/previous), r (refresh), j/k (queue) and q (quit), with contextual
// help displayed via charmbracelet/bubbles/help.
package ui
