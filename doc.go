// Package fsblob packs files into a flat archive blob and unpacks them again.
//
// An archive is a sequence of entries laid out back to back with no
// alignment. Each entry is a 16-byte header followed by the entry payload:
//   - length: big-endian uint32, payload size plus the 16-byte header
//   - name: 12 bytes, NUL-padded or truncated
//   - payload: the file content as produced by a [codec.Codec]
//
// The archive ends at end of data or at a header whose length is the
// 0xFFFFFFFF sentinel. Builders may append 0xFF fill bytes to reach a minimum
// size expected by the consumer.
//
// # Building
//
//	c, err := codec.NewExec("tools/lzari/lzari")
//	if err != nil {
//	    return err
//	}
//	err = fsblob.Build(ctx, []string{"data/tile1.tg~", `data/a.txt@"my file"`}, "out/fs.bin", c,
//	    fsblob.BuildWithMinSize(0x20000),
//	    fsblob.BuildWithReferenceQuirks(true),
//	)
//
// The whole archive is assembled in memory and written once, so a failed
// build never leaves a partial output file.
//
// # Extracting
//
//	stats, err := fsblob.Extract(ctx, "out/fs.bin", "fs", c)
//
// Use [Inspect] to list entries without decoding them.
package fsblob
