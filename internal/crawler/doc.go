// Package crawler discovers documents under a root directory and extracts
// their references and anchors.
//
// # Components
//
//   - Walker: Recursively enumerates documents in deterministic walk order,
//     skipping hidden and excluded directories, and indexes every file seen
//   - Parser: Extracts references and anchor identifiers from decoded text,
//     recovering from markup the structural parser cannot handle
//   - Decode: Converts raw bytes to UTF-8, honouring a declared charset and
//     replacing undecodable sequences
//
// # Usage
//
//	fsys, err := crawler.OpenRoot("site")
//	walker := crawler.NewWalker(fsys, crawler.WithExcludeDirs([]string{"node_modules"}))
//	result, err := walker.Walk(ctx)
//	for _, doc := range result.Documents {
//	    fmt.Println(doc.Path, len(doc.References))
//	}
//
// The Walker works on an fs.FS so that every component receives the root
// explicitly; nothing depends on the process working directory.
package crawler
