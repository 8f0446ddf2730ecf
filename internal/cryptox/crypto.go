// Package cryptox derives the prover's secrets from a password.
package cryptox

import "golang.org/x/crypto/argon2"

// SecretSize is the length of a derived secret in bytes.
const SecretSize = 32

const (
	saltPrefix           = "zkpauth/"
	commitmentSaltPrefix = "zkpauth-commitment/"
)

// DeriveSecret stretches password with Argon2id. The user name salts the
// derivation so equal passwords give unrelated secrets for different users.
// The caller reduces the result into the proof system's exponent range.
func DeriveSecret(password []byte, user string) []byte {
	return derive(password, saltPrefix+user)
}

// DeriveCommitmentSecret derives the value opened by the commitment flow.
// The opening is sent in the clear, so it uses its own salt and never
// reveals the group secret returned by DeriveSecret.
func DeriveCommitmentSecret(password []byte, user string) []byte {
	return derive(password, commitmentSaltPrefix+user)
}

func derive(password []byte, salt string) []byte {
	return argon2.IDKey(password, []byte(salt), 1, 64*1024, 4, SecretSize)
}
