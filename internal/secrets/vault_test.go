package secrets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingFetcher struct {
	values map[string]string
	calls  int
}

func (f *countingFetcher) fetch(_ context.Context, name string) (string, error) {
	f.calls++
	v, ok := f.values[name]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func TestVaultClient_CachesUntilExpiry(t *testing.T) {
	src := &countingFetcher{values: map[string]string{"x-api-key": "k1"}}
	v := newVaultClient(src, &VaultConfig{CacheEnabled: true, CacheTTL: time.Minute}, zap.NewNop())
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	v.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		got, err := v.GetSecret(context.Background(), "x-api-key")
		require.NoError(t, err)
		assert.Equal(t, "k1", got)
	}
	assert.Equal(t, 1, src.calls)

	now = now.Add(time.Minute)
	_, err := v.GetSecret(context.Background(), "x-api-key")
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)

	v.ClearCache()
	_, err = v.GetSecret(context.Background(), "x-api-key")
	require.NoError(t, err)
	assert.Equal(t, 3, src.calls)
}

func TestVaultClient_NoCache(t *testing.T) {
	src := &countingFetcher{values: map[string]string{"a": "1"}}
	v := newVaultClient(src, &VaultConfig{}, zap.NewNop())

	_, _ = v.GetSecret(context.Background(), "a")
	_, _ = v.GetSecret(context.Background(), "a")
	assert.Equal(t, 2, src.calls)
	assert.Equal(t, defaultCacheTTL, v.cacheTTL)
}

func TestVaultClient_Error(t *testing.T) {
	v := newVaultClient(&countingFetcher{}, &VaultConfig{CacheEnabled: true}, zap.NewNop())

	_, err := v.GetSecret(context.Background(), "missing")
	assert.ErrorContains(t, err, "failed to get secret 'missing'")
}

func TestProvider_GetSecretOrEnv(t *testing.T) {
	env := map[string]string{"X_API_KEY": "from-env"}
	vault := newVaultClient(&countingFetcher{values: map[string]string{"x-api-key": "from-vault"}}, &VaultConfig{}, zap.NewNop())
	p := &Provider{
		source: SourceVault,
		vault:  vault,
		getenv: func(k string) string { return env[k] },
		logger: zap.NewNop(),
	}

	got, err := p.GetSecretOrEnv(context.Background(), "x-api-key", "X_API_KEY")
	require.NoError(t, err)
	assert.Equal(t, "from-env", got)

	delete(env, "X_API_KEY")
	got, err = p.GetSecretOrEnv(context.Background(), "x-api-key", "X_API_KEY")
	require.NoError(t, err)
	assert.Equal(t, "from-vault", got)
	assert.True(t, p.IsVaultEnabled())
}

func TestResolveSource(t *testing.T) {
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceAuto, "development"))
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceAuto, ""))
	assert.Equal(t, SourceVault, ResolveSource(SourceAuto, "production"))
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceEnvironment, "production"))
}
