// Package scheduler executes phase groups with a completion barrier.
//
// Scheduler.Run dispatches every task of a group on its own goroutine and
// returns only after all of them have finished, successfully or not. A
// failing task never cancels its siblings; outcomes are collected and
// reported per component once the barrier is reached.
//
// Pipeline chains the fetch, install and run phases. A component that failed
// a phase never reaches the next one, and by default a phase with any failure
// stops the pipeline altogether.
package scheduler
