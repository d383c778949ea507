// Copyright © 2025 The Gomon Project.

/*
Package store keeps a history of the samples of the "gomodel" command on disk
so that the model of any stored tick can be derived again and replayed. Each
sample is a file named by its timestamp, encoded as deterministic CBOR and
compressed with zstd or lz4.

The store package defines the following command line flags:
  - -store:    the directory for the history of samples (default no history)
  - -compress: the compression of stored samples, none, zstd or lz4 (default zstd)
  - -retain:   the age beyond which stored samples are pruned (default 24h)
*/
package store
