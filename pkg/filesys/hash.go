package filesys

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/crc32"
	"io"

	"github.com/cespare/xxhash/v2"
)

// HashAlgo names a digest for [File.Hash].
type HashAlgo string

const (
	HashSHA1   HashAlgo = "sha1"
	HashMD5    HashAlgo = "md5"
	HashSHA224 HashAlgo = "sha224"
	HashSHA256 HashAlgo = "sha256"
	HashSHA384 HashAlgo = "sha384"
	HashSHA512 HashAlgo = "sha512"
	HashCRC32B HashAlgo = "crc32b"
	HashXXH64  HashAlgo = "xxh64"
)

// DefaultHash is used by [File.HashDefault].
const DefaultHash = HashSHA1

var hashes = map[HashAlgo]func() hash.Hash{
	HashSHA1:   sha1.New,
	HashMD5:    md5.New,
	HashSHA224: sha256.New224,
	HashSHA256: sha256.New,
	HashSHA384: sha512.New384,
	HashSHA512: sha512.New,
	HashCRC32B: func() hash.Hash { return crc32.NewIEEE() },
	HashXXH64:  func() hash.Hash { return xxhash.New() },
}

// HashAlgos lists the supported digests.
func HashAlgos() []HashAlgo {
	return []HashAlgo{HashSHA1, HashMD5, HashSHA224, HashSHA256, HashSHA384, HashSHA512, HashCRC32B, HashXXH64}
}

// ParseHashAlgo validates name.
func ParseHashAlgo(name string) (HashAlgo, error) {
	algo := HashAlgo(name)
	if _, ok := hashes[algo]; !ok {
		return "", invalidArg(fmt.Sprintf("unknown hash algorithm %q", name))
	}

	return algo, nil
}

// Hash returns the lowercase hex digest of the content.
func (f File) Hash(algo HashAlgo) (string, error) {
	newHash, ok := hashes[algo]
	if !ok {
		return "", invalidArg(fmt.Sprintf("unknown hash algorithm %q", algo))
	}

	h, err := f.fs().Open(f.path)
	if err != nil {
		return "", &Error{Kind: KindInput, Path: f.path, Err: err}
	}
	defer h.Close()

	sum := newHash()
	if _, err := io.Copy(sum, h); err != nil {
		return "", &Error{Kind: KindInput, Path: f.path, Err: err}
	}

	return hex.EncodeToString(sum.Sum(nil)), nil
}

// HashDefault returns the SHA-1 digest of the content.
func (f File) HashDefault() (string, error) {
	return f.Hash(DefaultHash)
}
