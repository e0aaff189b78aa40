// ABOUTME: zstd compression of snapshot content at rest
// ABOUTME: Content is checked against its blake3 checksum when read back

package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"lukechampine.com/blake3"
)

var ErrCorruptBackup = errors.New("backup content does not match its checksum")

func compress(content []byte) ([]byte, error) {
	var compressed bytes.Buffer

	encoder, err := zstd.NewWriter(&compressed)
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	if _, err := encoder.Write(content); err != nil {
		encoder.Close()
		return nil, fmt.Errorf("compressing: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("closing encoder: %w", err)
	}

	return compressed.Bytes(), nil
}

// decompress restores content and verifies it against checksum.
func decompress(data, checksum []byte) ([]byte, error) {
	decoder, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer decoder.Close()

	content, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("decompressing: %w", err)
	}

	if sum := blake3.Sum256(content); !bytes.Equal(sum[:], checksum) {
		return nil, ErrCorruptBackup
	}

	return content, nil
}
