// Package state shares the progress of a processing wait between the
// goroutine running vws.Client.WaitForTargetProcessed and the view that
// renders it.
//
// The wait goroutine writes through Store.Start, Store.Observe (passed as
// the OnPoll hook) and Store.Finish. The view calls Store.Snapshot on each
// tick. Snapshots are copies, so the view can hold on to one without
// locking.
package state
