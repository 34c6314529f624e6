package utils

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

func encodeSum(v uint64) string {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return hex.EncodeToString(buf)
}

func DigestBytes(raw []byte) string {
	return encodeSum(xxhash.Sum64(raw))
}

// DigestFile returns the hex xxhash64 of the file content and its size.
func DigestFile(file string) (string, int64, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()
	h := xxhash.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("hash file failed, err:%w", err)
	}
	return encodeSum(h.Sum64()), n, nil
}
