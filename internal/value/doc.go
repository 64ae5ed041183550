// Package value models the generic structured documents that command trees
// are read from and written to.
//
// A document is a tree of sealed Value nodes. Decoders exist for JSON, YAML,
// TOML and CUE; all of them produce the same tree so the rest of the module
// never sees the source format. Numbers without a fraction decode to Int.
//
// Two encodings are provided:
//   - Marshal/MarshalIndent: sorted keys, for files humans read
//   - MarshalCanonical: NFC strings and no HTML escaping, for Digest
package value
