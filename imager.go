package ciecolor

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/gocie/ciecolor/internal/colorspace"
	"github.com/gocie/ciecolor/internal/render"
)

// crdHandle lets a CRD be shared by more than one ImagerState by reference
// counting, per spec.md §5. The count only ever changes from single-threaded
// imager-state code, so it is a plain int rather than an atomic.
type crdHandle struct {
	crd  *render.CRD
	refs int
}

// jointHandle is the same reference-counting wrapper around a joint cache.
// The joint cache is logically private to one imager state, but Clone lets
// two states start out sharing one until either calls Unshare or installs a
// new color space/CRD (which always allocates a fresh joint cache).
type jointHandle struct {
	joint *render.Joint
	refs  int
}

// ImagerState is a single host-visible rendering context: the CRD currently
// bound to it (if any), the joint cache fusing that CRD with whichever
// color space was last installed, and which color space that was.
type ImagerState struct {
	crd    *crdHandle
	joint  *jointHandle
	common *colorspace.Common
}

// NewImagerState returns a fresh, unbound imager state.
func NewImagerState() *ImagerState {
	return &ImagerState{}
}

// CRD returns the CRD currently bound to state, or nil if none is installed.
func (s *ImagerState) CRD() *render.CRD {
	if s.crd == nil {
		return nil
	}
	return s.crd.crd
}

// CRDHandle returns a stable identifier for the bound CRD, for hosts that
// want to correlate which imager is bound to which dictionary. The zero
// value is returned when no CRD is installed.
func (s *ImagerState) CRDHandle() uuid.UUID {
	if s.crd == nil {
		return uuid.UUID{}
	}
	return s.crd.crd.ID
}

// Clone returns a new ImagerState sharing this one's CRD and joint cache by
// reference. Per spec.md §5, a shared CRD is safe to read concurrently once
// COMPLETED; the joint cache is nominally private, so a clone that diverges
// (installs its own color space or CRD) will allocate its own copy rather
// than mutate the shared one. Call Unshare first if the clone needs to
// mutate the joint cache in place without affecting the original.
func (s *ImagerState) Clone() *ImagerState {
	clone := &ImagerState{common: s.common}
	if s.crd != nil {
		s.crd.refs++
		clone.crd = s.crd
	}
	if s.joint != nil {
		s.joint.refs++
		clone.joint = s.joint
	}
	return clone
}

// Unshare gives state its own private copy of the joint cache if it is
// currently shared with another ImagerState (refcount > 1), per spec.md §5.
// A no-op if the joint cache is unshared or absent.
func (s *ImagerState) Unshare() {
	if s.joint == nil || s.joint.refs <= 1 {
		return
	}
	cp := *s.joint.joint
	s.joint.refs--
	s.joint = &jointHandle{joint: &cp, refs: 1}
}

func (s *ImagerState) rebuildJoint() error {
	if s.crd == nil || s.common == nil {
		s.joint = nil
		return nil
	}
	j := &render.Joint{}
	if err := j.Init(s.common, s.crd.crd); err != nil {
		return fmt.Errorf("%w: %v", ErrTransformPQR, err)
	}
	j.Complete(s.common, s.crd.crd)
	s.joint = &jointHandle{joint: j, refs: 1}
	return nil
}

// InstallCIEA prepares cs (load + complete) and installs it as state's
// current color space, rebuilding the joint cache if a CRD is already
// bound.
func InstallCIEA(cs *colorspace.A, state *ImagerState) error {
	cs.Load()
	cs.Complete()
	state.common = &cs.Common
	return state.rebuildJoint()
}

// InstallCIEABC is InstallCIEA for the ABC variant.
func InstallCIEABC(cs *colorspace.ABC, state *ImagerState) error {
	cs.Load()
	cs.Complete()
	state.common = &cs.Common
	return state.rebuildJoint()
}

// InstallCIEDEF is InstallCIEA for the DEF variant.
func InstallCIEDEF(cs *colorspace.TableSpace, state *ImagerState) error {
	cs.Load()
	cs.Complete()
	state.common = &cs.Common
	return state.rebuildJoint()
}

// InstallCIEDEFG is InstallCIEA for the DEFG variant.
func InstallCIEDEFG(cs *colorspace.TableSpace, state *ImagerState) error {
	cs.Load()
	cs.Complete()
	state.common = &cs.Common
	return state.rebuildJoint()
}

// SetColorRendering completes crd, binds it to state by reference, and
// triggers joint-cache preparation for whichever color space is currently
// installed. Any previously bound CRD is released (its refcount
// decremented; the handle itself has no finalizer since Go's GC reclaims
// it once nothing references it).
func SetColorRendering(state *ImagerState, crd *render.CRD) error {
	if crd.ID == (uuid.UUID{}) {
		crd.ID = uuid.New()
	}
	crd.Complete()
	if state.crd != nil {
		state.crd.refs--
	}
	state.crd = &crdHandle{crd: crd, refs: 1}
	return state.rebuildJoint()
}

// CurrentColorRendering returns the CRD currently bound to state, or nil.
func CurrentColorRendering(state *ImagerState) *render.CRD {
	return state.CRD()
}
