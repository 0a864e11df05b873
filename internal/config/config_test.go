package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"cryptokit/internal/rc5"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)
	require.Equal(t, "NOTICE", cfg.Logging.Level)
	require.Equal(t, rc5.DefaultRounds, cfg.RC5.Rounds)
	require.Equal(t, 2048, cfg.RSA.Bits)
	require.Equal(t, "L2048N256", cfg.DSA.Sizes)
	require.Equal(t, 1024*1024, cfg.IO.BufferSize)
	require.Equal(t, cfg, Default())
}

func TestLoadFile(t *testing.T) {
	body := `
[Logging]
Level = "debug"
File = "/tmp/cryptokit.log"

[RC5]
Rounds = 12

[DSA]
Sizes = "l1024n160"

[IO]
BufferSize = 4096
`
	f := filepath.Join(t.TempDir(), "cryptokit.toml")
	require.NoError(t, os.WriteFile(f, []byte(body), 0600))

	cfg, err := LoadFile(f)
	require.NoError(t, err)
	require.Equal(t, "DEBUG", cfg.Logging.Level)
	require.Equal(t, "/tmp/cryptokit.log", cfg.Logging.File)
	require.Equal(t, 12, cfg.RC5.Rounds)
	require.Equal(t, "L1024N160", cfg.DSA.Sizes)
	require.Equal(t, 4096, cfg.IO.BufferSize)
}

func TestInvalid(t *testing.T) {
	for _, body := range []string{
		"[Logging]\nLevel = \"LOUD\"\n",
		"[RC5]\nRounds = 300\n",
		"[RSA]\nBits = 512\n",
		"[DSA]\nSizes = \"L4096N512\"\n",
		"[IO]\nBufferSize = -1\n",
		"[Nope]\nX = 1\n",
	} {
		_, err := Load([]byte(body))
		require.Error(t, err, body)
	}

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
