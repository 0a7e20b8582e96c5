package wallet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	// Argon2id parameters for secret export.
	Argon2Time        = 3
	Argon2Memory      = 64 * 1024 // 64 MB
	Argon2Parallelism = 4
	Argon2KeyLen      = 32

	// Export format sizes.
	SaltLen     = 16
	NonceLen    = 12
	ChecksumLen = 4
)

// EncryptSecret encrypts a WIF secret for explicit export with
// Argon2id + AES-256-GCM.
//
// Output format: salt(16B) || nonce(12B) || AES-GCM(argon2id(password,salt), nonce, secret||checksum)
//
// The checksum is SHA256(secret)[:4] for verifying correct decryption.
func EncryptSecret(secret, password string) ([]byte, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	salt := make([]byte, SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("wallet: failed to generate salt: %w", err)
	}

	gcm, err := exportCipher(password, salt)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256([]byte(secret))
	plaintext := make([]byte, 0, len(secret)+ChecksumLen)
	plaintext = append(plaintext, secret...)
	plaintext = append(plaintext, sum[:ChecksumLen]...)

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("wallet: failed to generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	result := make([]byte, 0, SaltLen+NonceLen+len(ciphertext))
	result = append(result, salt...)
	result = append(result, nonce...)
	result = append(result, ciphertext...)
	return result, nil
}

// DecryptSecret reverses EncryptSecret and verifies the embedded checksum.
func DecryptSecret(encrypted []byte, password string) (string, error) {
	if len(encrypted) < SaltLen+NonceLen+ChecksumLen {
		return "", ErrDecryptionFailed
	}

	salt := encrypted[:SaltLen]
	nonce := encrypted[SaltLen : SaltLen+NonceLen]
	ciphertext := encrypted[SaltLen+NonceLen:]

	gcm, err := exportCipher(password, salt)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil || len(plaintext) < ChecksumLen {
		return "", ErrDecryptionFailed
	}

	secret := plaintext[:len(plaintext)-ChecksumLen]
	stored := plaintext[len(plaintext)-ChecksumLen:]
	sum := sha256.Sum256(secret)
	if subtle.ConstantTimeCompare(stored, sum[:ChecksumLen]) != 1 {
		return "", ErrChecksumMismatch
	}

	return string(secret), nil
}

func exportCipher(password string, salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey([]byte(password), salt, Argon2Time, Argon2Memory, Argon2Parallelism, Argon2KeyLen)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("wallet: AES cipher creation failed: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("wallet: GCM creation failed: %w", err)
	}
	return gcm, nil
}
