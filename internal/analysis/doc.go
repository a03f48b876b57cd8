// Package analysis turns recorded particle trajectories into summaries.
//
//   - [PowerSpectrum] and [DominantFrequency]: oscillation content of a
//     coordinate series
//   - [NewPhasePortrait]: position against finite-difference velocity
//   - [Crossings]: times at which a series rises through a threshold
//
// Series usually come from storage.Store.Series:
//
//	times, ys, _ := store.Series(runID, 10, "y")
//	f := analysis.DominantFrequency(ys, times[1]-times[0])
package analysis
