// Package ciecolor implements the CIE-based color rendering core of a
// PostScript-style imaging pipeline: decode functions, matrix transforms,
// chromatic adaptation, and device encoding, composed through cached
// lookup tables so that per-pixel evaluation never re-evaluates a
// host-supplied function.
//
// A host installs one of the four CIE color-space variants (A, ABC, DEF,
// DEFG) on an ImagerState with InstallCIEA/ABC/DEF/DEFG, optionally binds a
// color rendering dictionary with SetColorRendering, and then evaluates
// colors through ConcretizeCIEA/ABC/DEF/DEFG or RemapCIEABC. Host-supplied
// functions run only during preparation (loading and fusing caches), which
// is where their failures surface. Evaluation returns an error only when a
// DEF/DEFG lookup table's shape does not match the color space, and, for
// RemapCIEABC, from a device adapter or an unexpected channel count.
package ciecolor
