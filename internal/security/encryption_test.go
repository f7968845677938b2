package security

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptor_EncryptDecrypt(t *testing.T) {
	// Generate a 32-byte key for AES-256
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	encryptor, err := NewEncryptor(key)
	require.NoError(t, err)

	testCases := []struct {
		name      string
		plaintext string
	}{
		{
			name:      "simple text",
			plaintext: "Hello, World!",
		},
		{
			name:      "sensitive health data",
			plaintext: "Patient has diabetes and high blood pressure",
		},
		{
			name:      "empty string",
			plaintext: "",
		},
		{
			name:      "roman urdu text",
			plaintext: "Mujhe sar dard aur bukhar hai, dawai le raha hoon",
		},
		{
			name:      "long text",
			plaintext: "This is a very long medical history entry that lists prior surgeries, chronic conditions, current medications with dosages, and known allergies. It must round-trip through encryption without loss.",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ciphertext, err := encryptor.Encrypt(tc.plaintext)
			require.NoError(t, err)

			// Empty plaintext should return empty ciphertext
			if tc.plaintext == "" {
				assert.Equal(t, "", ciphertext)
				return
			}

			assert.NotEqual(t, tc.plaintext, ciphertext)
			assert.NotEmpty(t, ciphertext)

			decrypted, err := encryptor.Decrypt(ciphertext)
			require.NoError(t, err)
			assert.Equal(t, tc.plaintext, decrypted)
		})
	}
}

func TestEncryptor_InvalidKey(t *testing.T) {
	testCases := []struct {
		name    string
		keySize int
	}{
		{name: "too short", keySize: 16},
		{name: "too long", keySize: 64},
		{name: "empty", keySize: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			key := make([]byte, tc.keySize)
			_, err := NewEncryptor(key)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "encryption key must be 32 bytes")
		})
	}
}

func TestEncryptor_EncryptField(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	encryptor, err := NewEncryptor(key)
	require.NoError(t, err)

	t.Run("nil passes through", func(t *testing.T) {
		out, err := encryptor.EncryptField(nil)
		require.NoError(t, err)
		assert.Nil(t, out)
	})

	t.Run("empty passes through", func(t *testing.T) {
		empty := ""
		out, err := encryptor.EncryptField(&empty)
		require.NoError(t, err)
		require.NotNil(t, out)
		assert.Equal(t, "", *out)
	})

	t.Run("round trip", func(t *testing.T) {
		value := "Type 2 diabetes diagnosed 2019, on metformin"
		encrypted, err := encryptor.EncryptField(&value)
		require.NoError(t, err)
		require.NotNil(t, encrypted)
		assert.NotEqual(t, value, *encrypted)

		decrypted, err := encryptor.DecryptField(encrypted)
		require.NoError(t, err)
		require.NotNil(t, decrypted)
		assert.Equal(t, value, *decrypted)
	})
}

func TestEncryptor_DifferentCiphertexts(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	encryptor, err := NewEncryptor(key)
	require.NoError(t, err)

	plaintext := "sensitive health data"

	ciphertext1, err := encryptor.Encrypt(plaintext)
	require.NoError(t, err)

	ciphertext2, err := encryptor.Encrypt(plaintext)
	require.NoError(t, err)

	// Random nonce means repeated encryptions never collide
	assert.NotEqual(t, ciphertext1, ciphertext2)

	decrypted1, err := encryptor.Decrypt(ciphertext1)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted1)

	decrypted2, err := encryptor.Decrypt(ciphertext2)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted2)
}

func TestEncryptor_InvalidCiphertext(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	encryptor, err := NewEncryptor(key)
	require.NoError(t, err)

	testCases := []struct {
		name       string
		ciphertext string
	}{
		{name: "invalid base64", ciphertext: "not-valid-base64!!!"},
		{name: "too short", ciphertext: "YWJj"},
		{name: "corrupted data", ciphertext: "YWJjZGVmZ2hpamtsbW5vcHFyc3R1dnd4eXo="},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := encryptor.Decrypt(tc.ciphertext)
			assert.Error(t, err)
		})
	}
}
