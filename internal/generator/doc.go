// Package generator writes Xcode project artifacts for a resolved graph.
//
// Each project becomes a <Name>.xcodeproj bundle holding project.pbxproj and
// its schemes; the root gets a .xcworkspace. Object IDs are derived from
// stable keys, so the same graph always produces byte-identical files.
//
// Rendering happens in memory, one goroutine per project. Writing is
// all-or-nothing: bundles are staged next to their destination and only
// swapped into place once every one of them has been written.
package generator
