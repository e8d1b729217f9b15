package http

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrInvalidOperatorKeyHash         = errors.New("invalid operator key hash format")
	ErrIncompatibleOperatorKeyVersion = errors.New("incompatible operator key hash version")
	ErrOperatorKeyMismatch            = errors.New("operator key does not match")
)

type Argon2idParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

var DefaultArgon2idParams = Argon2idParams{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// HashOperatorKey derives a PHC-formatted argon2id hash for storing in
// configuration. Used by provisioning tooling and tests.
func HashOperatorKey(key string, params Argon2idParams) (string, error) {
	salt := make([]byte, params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(key), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	// Format is $argon2id$v=19$m=...,t=...,p=...$salt$hash
	format := "$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s"
	return fmt.Sprintf(format, argon2.Version, params.Memory, params.Iterations, params.Parallelism, b64Salt, b64Hash), nil
}

// OperatorKeyVerifier checks presented operator keys against one configured
// argon2id hash. An empty hash means no key is provisioned and every
// presented key is rejected.
type OperatorKeyVerifier struct {
	hash string
}

func NewOperatorKeyVerifier(hash string) *OperatorKeyVerifier {
	return &OperatorKeyVerifier{hash: strings.TrimSpace(hash)}
}

func (v *OperatorKeyVerifier) Verify(key string) error {
	if v == nil || v.hash == "" {
		return ErrOperatorKeyMismatch
	}

	parts := strings.Split(v.hash, "$")
	if len(parts) != 6 {
		return ErrInvalidOperatorKeyHash
	}

	if parts[1] != "argon2id" {
		return ErrInvalidOperatorKeyHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return err
	}
	if version != argon2.Version {
		return ErrIncompatibleOperatorKeyVersion
	}

	var params Argon2idParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return err
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return err
	}

	decodedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return err
	}
	params.KeyLength = uint32(len(decodedHash))

	comparisonHash := argon2.IDKey([]byte(key), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)

	if subtle.ConstantTimeCompare(decodedHash, comparisonHash) == 1 {
		return nil
	}

	return ErrOperatorKeyMismatch
}
