package cryptox_test

import (
	"strconv"
	"testing"

	"github.com/nostella/nostella/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerificationCode(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for range 200 {
		code, err := cryptox.GenerateVerificationCode()
		require.NoError(t, err)
		require.Len(t, code, cryptox.VerificationCodeLength)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 100000)
		require.LessOrEqual(t, n, 999999)

		seen[code] = struct{}{}
	}

	// 200 draws from a 900k space should essentially never all collide.
	require.Greater(t, len(seen), 150)
}
