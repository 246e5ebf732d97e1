package pokeapi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"pikachu":   "Pikachu",
		"mr-mime":   "Mr Mime",
		"tapu-koko": "Tapu Koko",
		"ho-oh":     "Ho Oh",
		"":          "",
	}
	for slug, want := range cases {
		require.Equal(t, want, FormatName(slug))
	}
}

func TestPadID(t *testing.T) {
	t.Parallel()

	require.Equal(t, "001", PadID(1))
	require.Equal(t, "025", PadID(25))
	require.Equal(t, "151", PadID(151))
	require.Equal(t, "1025", PadID(1025))
}

func TestNormalizeFlavor(t *testing.T) {
	t.Parallel()

	in := "When several of\nthese POKéMON\fgather, their\r\nelectricity  could build."
	want := "When several of these POKéMON gather, their electricity could build."
	require.Equal(t, want, normalizeFlavor(in))
}

func TestRecord_BST(t *testing.T) {
	t.Parallel()

	rec := &Record{Stats: map[string]int{
		"hp": 35, "attack": 55, "defense": 40,
		"special-attack": 50, "special-defense": 50, "speed": 90,
	}}
	require.Equal(t, 320, rec.BST())

	empty := &Record{Stats: map[string]int{}}
	require.Zero(t, empty.BST())
}

func TestRecord_Units(t *testing.T) {
	t.Parallel()

	rec := &Record{Height: 4, Weight: 60}
	require.Equal(t, "0.4", rec.HeightMeters())
	require.Equal(t, "6.0", rec.WeightKilograms())
}
