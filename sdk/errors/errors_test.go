package sdkerrors

import (
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	key := solana.MustPublicKeyFromBase58("6UmMZr5MEqiKWD5jqTJd1WCR5kT8oZuFYBLJFi1o6GQX")

	tests := []struct {
		err      error
		expected string
	}{
		{NewMissingSignatureError(key), "missing signature for account " + key.String()},
		{NewProgramNotFoundError(key), "program " + key.String() + " is not registered"},
		{NewProgramFailedError(key, errors.New("custom program error: 0x1")),
			"program " + key.String() + " failed: custom program error: 0x1"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, test.err.Error())
	}
}

func TestProgramFailedError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := NewProgramFailedError(solana.PublicKey{}, cause)

	assert.ErrorIs(t, err, cause)
}
