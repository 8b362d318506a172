// Package label defines the shipping label data model shared by the tracking
// generator, the address extraction service, the form state and the renderers.
//
// An [Address] is a plain record of six text fields; none of them is
// structurally validated and empty strings are always allowed. A
// [PackageDetails] carries weight, dimensions, service tier, tracking number
// and ship date. [LabelData] is the snapshot handed to renderers.
//
// Use [NewAddress] and [NewPackageDetails] for the defaults a fresh form starts
// with, and [PackageDetails.Validate] to check user edits of the package block.
package label
