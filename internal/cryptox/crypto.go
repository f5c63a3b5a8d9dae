// Package cryptox hashes passwords on the client side. The server only ever
// sees the resulting PHC string, never the password.
package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// SaltSize is the number of random bytes in a freshly generated salt.
const SaltSize = 16

var ErrBadSalt = errors.New("salt is not valid base64")

// Params are the argon2id cost settings.
type Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
}

// WebParams match the web client, so accounts created there can log in
// from the CLI and the other way round.
var WebParams = Params{Time: 1, Memory: 1 << 20, Threads: 1, KeyLen: 32}

// NewSalt returns SaltSize random bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// DecodeSalt accepts the salt as returned by the server, with or without
// base64 padding.
func DecodeSalt(s string) ([]byte, error) {
	salt, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil || len(salt) == 0 {
		return nil, ErrBadSalt
	}
	return salt, nil
}

// HashPassword derives an argon2id digest and encodes it as a PHC string:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<digest>
func HashPassword(password, salt []byte, p Params) string {
	digest := argon2.IDKey(password, salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	defer WipeByteArray(digest)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.Memory, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	)
}

// WipeByteArray zeroes b in place.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
