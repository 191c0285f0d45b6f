package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	h := NewArgon2id()
	// tests rápidos: bajar memoria sin cambiar el formato
	h.P.Memory = 8 * 1024

	phc, err := h.Hash("s3creta!")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(phc, "$argon2id$v=19$"))

	assert.True(t, h.Verify("s3creta!", phc))
	assert.False(t, h.Verify("otra", phc))
	assert.False(t, h.Verify("", phc))
}

func TestHashEmptyPassword(t *testing.T) {
	_, err := NewArgon2id().Hash("")
	require.Error(t, err)
}

func TestHashIsSalted(t *testing.T) {
	h := &Argon2id{P: Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}}
	a, err := h.Hash("mismo")
	require.NoError(t, err)
	b, err := h.Hash("mismo")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("mismo", a))
	assert.True(t, h.Verify("mismo", b))
}

func TestVerifyMalformed(t *testing.T) {
	h := NewArgon2id()
	for _, phc := range []string{
		"",
		"no-es-phc",
		"$argon2i$v=19$m=65536,t=3,p=1$c2FsdA$ZGs",   // variante equivocada
		"$argon2id$v=18$m=65536,t=3,p=1$c2FsdA$ZGs", // versión equivocada
		"$argon2id$v=19$m=65536$c2FsdA$ZGs",         // params incompletos
		"$argon2id$v=19$m=65536,t=3,p=1$!!!$ZGs",    // salt no-base64
		"$argon2id$v=19$m=65536,t=3,p=1$c2FsdA$!!!", // dk no-base64
	} {
		assert.False(t, h.Verify("lo-que-sea", phc), "phc=%q", phc)
	}
}

func TestVerifyParamsFromPHC(t *testing.T) {
	// Verify tiene que usar los params DEL HASH, no los del hasher:
	// subir el costo en config no puede romper passwords viejas.
	old := &Argon2id{P: Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}}
	phc, err := old.Hash("legacy")
	require.NoError(t, err)

	current := NewArgon2id() // params default, más caros
	assert.True(t, current.Verify("legacy", phc))
}
