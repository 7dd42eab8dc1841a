package index

import (
	"bytes"
	"encoding/binary"
)

func seqKey(seq uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, seq)
	return buf
}

func seqFromKey(k []byte) uint64 {
	if len(k) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(k[:8])
}

// bolt rejects empty bucket names, so every collection bucket gets a prefix.
func collectionBucketName(collection string) []byte {
	return append([]byte("c:"), collection...)
}

func collectionFromBucketName(k []byte) string {
	return string(bytes.TrimPrefix(k, []byte("c:")))
}

// category sub-bucket name = collection + 0x00 + category
func categoryBucketName(collection, category string) []byte {
	buf := make([]byte, 0, len(collection)+1+len(category))
	buf = append(buf, collection...)
	buf = append(buf, 0x00)
	buf = append(buf, category...)
	return buf
}

func splitCategoryBucketName(k []byte) (collection, category string) {
	i := bytes.IndexByte(k, 0x00)
	if i < 0 {
		return "", string(k)
	}
	return string(k[:i]), string(k[i+1:])
}
