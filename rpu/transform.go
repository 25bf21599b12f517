/*
NAME
  transform.go

DESCRIPTION
  transform.go implements the two RPU profile conversions the
  demultiplexer can apply while copying metadata through: conversion
  to profile 8.1 (RPU-only, no enhancement-layer residual) and
  conversion to the Minimum Enhancement Layer profile.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package rpu

// To81 rewrites u in place to profile 8.1: an RPU-only profile that
// carries no enhancement-layer residual. Applying To81 twice has the
// same effect as applying it once.
func (u *RPU) To81() {
	u.ElSpatialResamplingFilterFlag = false
	u.DisableResidualFlag = true
}

// ToMEL rewrites u in place to the Minimum Enhancement Layer profile:
// the residual is disabled but, unlike To81, the spatial-resampling
// flag for the enhancement layer is left as decoded.
func (u *RPU) ToMEL() {
	u.DisableResidualFlag = true
}
