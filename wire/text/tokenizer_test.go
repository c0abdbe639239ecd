package text

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenize_Basic(t *testing.T) {
	toks, err := Tokenize([]byte(`{"LoadDisconnect_V":10.8}`), 0)
	require.NoError(t, err)
	require.Equal(t, TokLBrace, toks[0].Kind)
	require.Equal(t, TokString, toks[1].Kind)
	require.Equal(t, "LoadDisconnect_V", toks[1].Text)
	require.Equal(t, TokColon, toks[2].Kind)
	require.Equal(t, TokNumber, toks[3].Kind)
	require.InDelta(t, 10.8, toks[3].Float, 0.0001)
	require.Equal(t, TokRBrace, toks[4].Kind)
}

func TestTokenize_DecFracLiteral(t *testing.T) {
	toks, err := Tokenize([]byte(`123e-2`), 0)
	require.NoError(t, err)
	require.Len(t, toks, 1)
	require.Equal(t, TokDecFrac, toks[0].Kind)
	require.EqualValues(t, 123, toks[0].DecM)
	require.EqualValues(t, -2, toks[0].DecE)
}

func TestTokenize_ScientificFloatStillParsesAsFloat(t *testing.T) {
	// "1.5e2" has a decimal point, so it's an ordinary float, not a DECFRAC.
	toks, err := Tokenize([]byte(`1.5e2`), 0)
	require.NoError(t, err)
	require.Equal(t, TokNumber, toks[0].Kind)
}

func TestTokenize_CapacityExceeded(t *testing.T) {
	buf := []byte(`[1,2,3,4,5,6,7,8,9,10]`)
	_, err := Tokenize(buf, 3)
	require.Error(t, err)
}

func TestTokenize_Array(t *testing.T) {
	toks, err := Tokenize([]byte(`["Bat_V","Bat_A"]`), 0)
	require.NoError(t, err)
	require.Equal(t, TokLBracket, toks[0].Kind)
	require.Equal(t, "Bat_V", toks[1].Text)
}
