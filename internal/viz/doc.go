// Package viz renders estimation results for the terminal and for files.
//
// Three front ends share the same data:
//
//   - [TrajectoryChart] / [LossChart]: asciigraph charts for one-shot CLI
//     output
//   - [LiveModel]: a Bubble Tea view fed [StageMsg] events while the
//     curriculum runs
//   - [SavePlot]: PNG export of observed points vs the fitted trajectory
package viz
