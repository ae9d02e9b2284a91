package cryptox_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/bankgate/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	a, err := cryptox.GenerateToken(cryptox.TokenSize128)
	require.NoError(t, err)
	b, err := cryptox.GenerateToken(cryptox.TokenSize128)
	require.NoError(t, err)

	require.Len(t, a, 22)
	require.NotEqual(t, a, b)

	_, err = cryptox.GenerateToken(0)
	require.Error(t, err)
}

func TestFingerprintToken(t *testing.T) {
	require.Equal(t, cryptox.FingerprintToken("abc"), cryptox.FingerprintToken("abc"))
	require.NotEqual(t, cryptox.FingerprintToken("abc"), cryptox.FingerprintToken("abd"))
	require.Len(t, cryptox.FingerprintToken("abc"), 43)
}

func TestPasswordHasher(t *testing.T) {
	h := cryptox.PasswordHasher{Pepper: "pepper"}

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	require.Contains(t, hash, "$argon2id$v=19$")

	require.NoError(t, h.Verify("correct horse", hash))
	require.ErrorIs(t, h.Verify("wrong", hash), cryptox.ErrPasswordMismatch)

	other := cryptox.PasswordHasher{Pepper: "different"}
	require.ErrorIs(t, other.Verify("correct horse", hash), cryptox.ErrPasswordMismatch)

	require.ErrorIs(t, h.Verify("x", "$bcrypt$nope"), cryptox.ErrHashFormat)
}

func TestLoadOrCreatePepper(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pepper")

	first, err := cryptox.LoadOrCreatePepper(path)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := cryptox.LoadOrCreatePepper(path)
	require.NoError(t, err)
	require.Equal(t, first, second)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSealer(t *testing.T) {
	s, err := cryptox.NewSealer([]byte("master"))
	require.NoError(t, err)

	sealed, err := s.Seal([]byte("secret"))
	require.NoError(t, err)
	again, err := s.Seal([]byte("secret"))
	require.NoError(t, err)
	require.NotEqual(t, sealed, again, "nonce must differ")

	out, err := s.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, "secret", string(out))

	other, err := cryptox.NewSealer([]byte("other"))
	require.NoError(t, err)
	_, err = other.Open(sealed)
	require.Error(t, err)

	_, err = s.Open([]byte("short"))
	require.ErrorIs(t, err, cryptox.ErrCiphertext)

	str, err := s.SealString("psu-secret")
	require.NoError(t, err)
	plain, err := s.OpenString(str)
	require.NoError(t, err)
	require.Equal(t, "psu-secret", plain)

	_, err = cryptox.NewSealer(nil)
	require.Error(t, err)
}

func TestLoadMasterKey(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mk")
		require.NoError(t, os.WriteFile(path, []byte("from-file"), 0o600))
		got, eph, err := cryptox.LoadMasterKey(path, "BANKGATE_TEST_MASTER_KEY")
		require.NoError(t, err)
		require.False(t, eph)
		require.Equal(t, "from-file", string(got))
	})

	t.Run("env", func(t *testing.T) {
		t.Setenv("BANKGATE_TEST_MASTER_KEY", "from-env")
		got, eph, err := cryptox.LoadMasterKey("", "BANKGATE_TEST_MASTER_KEY")
		require.NoError(t, err)
		require.False(t, eph)
		require.Equal(t, "from-env", string(got))
	})

	t.Run("ephemeral", func(t *testing.T) {
		got, eph, err := cryptox.LoadMasterKey("", "BANKGATE_TEST_MASTER_KEY_UNSET")
		require.NoError(t, err)
		require.True(t, eph)
		require.Len(t, got, 32)
	})
}

func TestLoadOrCreateSigningKey(t *testing.T) {
	s, err := cryptox.NewSealer([]byte("master"))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "signing.key")

	first, err := cryptox.LoadOrCreateSigningKey(path, s)
	require.NoError(t, err)
	require.Contains(t, string(first), "PRIVATE KEY")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "PRIVATE KEY", "key must be sealed on disk")

	second, err := cryptox.LoadOrCreateSigningKey(path, s)
	require.NoError(t, err)
	require.Equal(t, first, second)
}
