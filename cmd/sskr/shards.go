package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/ruteri/sskr-service/sskr"
)

const (
	formatHex  = "hex"
	formatCBOR = "cbor"
)

func encodeShard(shard sskr.Shard, format string) (string, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case formatHex:
		data, err = shard.Encode()
	case formatCBOR:
		data, err = shard.EncodeCBOR()
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(data), nil
}

func decodeShard(s, format string) (sskr.Shard, error) {
	data, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return sskr.Shard{}, fmt.Errorf("invalid hex shard: %w", err)
	}
	switch format {
	case formatHex:
		return sskr.DecodeShard(data)
	case formatCBOR:
		return sskr.DecodeCBOR(data)
	default:
		return sskr.Shard{}, fmt.Errorf("unknown format %q", format)
	}
}

// readShardLines returns the last field of every non-empty line that is not
// a comment, so the output of split can be fed back unchanged.
func readShardLines(r io.Reader) ([]string, error) {
	var shards []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		shards = append(shards, fields[len(fields)-1])
	}
	return shards, scanner.Err()
}
