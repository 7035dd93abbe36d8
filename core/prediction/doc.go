// Package prediction applies pre-fit linear models to reflectance spectra.
// A PointPredictor computes one trait estimate per spectral row as the dot
// product of the row with a coefficient vector plus the model intercept. An
// optional BackTransform maps estimates from the scale the model was trained
// on back to trait units.
package prediction
