// Package security provides password hashing and verification built on
// argon2id. Hashes are stored in the encoded form, which embeds the salt and
// cost parameters, so verification needs no extra state.
package security

import "github.com/matthewhartstonge/argon2"

var config = argon2.DefaultConfig()

// HashPassword hashes a plaintext password into an encoded argon2id string.
func HashPassword(password string) (string, error) {
	encoded, err := config.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}

	return string(encoded), nil
}

// VerifyPassword reports whether the plaintext password matches the encoded
// hash. A mismatch is (false, nil); an error means the hash is malformed.
func VerifyPassword(password, encodedHash string) (bool, error) {
	return argon2.VerifyEncoded([]byte(password), []byte(encodedHash))
}
