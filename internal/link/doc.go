// Package link classifies the references found in documents and resolves
// local ones against the scanned tree.
//
// Classification is purely lexical: ignored schemes first, then web URLs,
// then same-document anchors, and everything else as a path relative to the
// referencing document (or to the root for a leading "/"). Resolution checks
// file existence before anchor existence and yields at most one finding per
// reference.
package link
