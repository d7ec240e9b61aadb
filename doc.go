// Package tile reads content-addressed container files.
//
// A container is a single file combining a CBOR manifest header with a
// sequence of content-addressed blocks:
//
//	<uvarint header-length><header-bytes><block>*
//
// where each block is <uvarint block-length><CID><payload-bytes> and a
// zero block length terminates the sequence. The manifest describes a
// virtual file tree: a required name, a resource map from request path
// to a CID plus response headers, and an optional icon list.
//
// Parsing builds an index from canonical CID string to the payload's
// byte range without materializing block payloads; block bytes are read
// on demand with a fresh file handle per read. The package is read-only:
// it never writes containers and does not verify payloads against their
// CIDs.
//
// [Store] holds parsed containers keyed by authority (a URL-safe token
// derived from the file name) for concurrent resolution from multiple
// goroutines. The http subpackage serves stored containers over HTTP.
package tile
