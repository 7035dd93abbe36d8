// Package jackknife derives per-sample uncertainty from an ensemble of
// jackknife-refit coefficient sets. Every fold is applied to the same spectra,
// producing an R×K matrix of predictions; each row is then reduced to a
// sample standard deviation and an empirical percentile interval.
package jackknife
