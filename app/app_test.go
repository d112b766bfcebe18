package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Luizsilva-repros/intranet/internal/accounts"
)

func TestHashCredential(t *testing.T) {
	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader("segredo\n"))
	rootCmd.SetArgs([]string{"hash-credential"})

	require.NoError(t, rootCmd.Execute())

	marker := strings.TrimSpace(out.String())
	assert.True(t, strings.HasPrefix(marker, "$argon2id$"))
	assert.True(t, accounts.ValidateCredential(marker, "segredo"))
}

func TestHashCredentialEmpty(t *testing.T) {
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs([]string{"hash-credential"})

	require.Error(t, rootCmd.Execute())
}
