package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt(t *testing.T) {
	key := bytes.Repeat([]byte{0x2a}, 32)

	enc, err := Encrypt("8812-4471-0093", key)
	require.NoError(t, err)
	assert.NotContains(t, enc, "8812")

	dec, err := Decrypt(enc, key)
	require.NoError(t, err)
	assert.Equal(t, "8812-4471-0093", dec)

	other, err := Encrypt("8812-4471-0093", key)
	require.NoError(t, err)
	assert.NotEqual(t, enc, other, "nonce must be random")

	_, err = Decrypt(enc, bytes.Repeat([]byte{0x2b}, 32))
	assert.Error(t, err)
}

func TestDecryptRejectsTampering(t *testing.T) {
	key := bytes.Repeat([]byte{0x2a}, 32)
	enc, err := Encrypt("4471009312", key)
	require.NoError(t, err)

	raw := []byte(enc)
	last := len(raw) - 1
	if raw[last] == '0' {
		raw[last] = '1'
	} else {
		raw[last] = '0'
	}
	_, err = Decrypt(string(raw), key)
	assert.Error(t, err)
}

func TestEncryptRejectsBadInput(t *testing.T) {
	_, err := Encrypt("", bytes.Repeat([]byte{1}, 16))
	assert.Error(t, err)
	_, err = Encrypt("x", []byte("short"))
	assert.Error(t, err)
	_, err = Decrypt("zz", bytes.Repeat([]byte{1}, 16))
	assert.Error(t, err)
	_, err = Decrypt("00", bytes.Repeat([]byte{1}, 16))
	assert.Error(t, err)
}

func TestHMAC(t *testing.T) {
	sig := GenerateHMAC("secret", "inv-1", "3125.00")
	assert.Len(t, sig, 64)
	assert.True(t, VerifyHMAC(sig, "secret", "inv-1", "3125.00"))
	assert.False(t, VerifyHMAC(sig, "secret", "inv-1", "3126.00"))
	assert.False(t, VerifyHMAC(sig, "other", "inv-1", "3125.00"))
	assert.False(t, VerifyHMAC("not-hex", "secret", "inv-1", "3125.00"))
}

func TestMaskAccountNumber(t *testing.T) {
	assert.Equal(t, "******7788", MaskAccountNumber("1234567788"))
	assert.Equal(t, "***", MaskAccountNumber("123"))
	assert.Equal(t, "", MaskAccountNumber(""))
}
