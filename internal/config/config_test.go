package config

import (
	"os"
	"path/filepath"
	"testing"

	"carshare-escrow/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
server:
  host: 0.0.0.0
  port: 50051
jwt:
  secret: 0123456789abcdef0123456789abcdef
platform:
  owner: "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"
  arbitrator: arbiter-1
`

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(baseYAML))
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.Storage.Type)
	assert.Equal(t, 50052, cfg.HTTP.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "0 */15 * * * *", cfg.Scheduler.ReconcileEscrow)
	assert.Equal(t, "0 0 * * * *", cfg.Scheduler.ReportOverdueBookings)
	assert.False(t, cfg.Scheduler.InProcess)
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
	require.NotNil(t, cfg.Platform.FeeBps)
	assert.Equal(t, int64(200), *cfg.Platform.FeeBps)

	roles := cfg.Roles()
	assert.Equal(t, domain.Principal("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"), roles.PlatformOwner)
	assert.Equal(t, domain.Principal("arbiter-1"), roles.Arbitrator)
	assert.True(t, roles.InsuranceVerifier.IsZero())
}

func TestParse_ExplicitZeroFee(t *testing.T) {
	cfg, err := Parse([]byte(baseYAML + "  fee_bps: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), cfg.Roles().PlatformFeeBps)
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("PLATFORM_FEE_BPS", "350")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STORAGE_TYPE", "postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "carshare")
	t.Setenv("DB_NAME", "carshare")
	t.Setenv("SCHEDULER_IN_PROCESS", "true")

	cfg, err := Parse([]byte(baseYAML))
	require.NoError(t, err)
	assert.Equal(t, int64(350), *cfg.Platform.FeeBps)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, StoragePostgres, cfg.Storage.Type)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.True(t, cfg.Scheduler.InProcess)
	assert.Equal(t, "postgres://carshare:@db:0/carshare?sslmode=disable", cfg.GetDatabaseConnectionString())
}

func TestValidate_Errors(t *testing.T) {
	cases := map[string]string{
		"missing port":  "jwt:\n  secret: 0123456789abcdef0123456789abcdef\nplatform:\n  owner: a\n",
		"short secret":  "server:\n  port: 1\njwt:\n  secret: short\nplatform:\n  owner: a\n",
		"no owner":      "server:\n  port: 1\njwt:\n  secret: 0123456789abcdef0123456789abcdef\n",
		"bad owner hex": "server:\n  port: 1\njwt:\n  secret: 0123456789abcdef0123456789abcdef\nplatform:\n  owner: 0xzz\n",
		"fee too high":  "server:\n  port: 1\njwt:\n  secret: 0123456789abcdef0123456789abcdef\nplatform:\n  owner: a\n  fee_bps: 1001\n",
		"bad storage":   "server:\n  port: 1\njwt:\n  secret: 0123456789abcdef0123456789abcdef\nplatform:\n  owner: a\nstorage:\n  type: redis\n",
		"postgres host": "server:\n  port: 1\njwt:\n  secret: 0123456789abcdef0123456789abcdef\nplatform:\n  owner: a\nstorage:\n  type: postgres\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(baseYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:50051", cfg.GetServerAddress())

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestGetSecurityLevel(t *testing.T) {
	assert.Equal(t, SecurityPublic, GetSecurityLevel("/carshare.v1.CarShareService/GetListing"))
	assert.Equal(t, SecurityAccess, GetSecurityLevel("/carshare.v1.CarShareService/Withdraw"))
	assert.Equal(t, SecurityAccess, GetSecurityLevel("/carshare.v1.CarShareService/Unknown"))
}

func TestParse_WalletSeed(t *testing.T) {
	cfg, err := Parse([]byte(baseYAML + "wallet:\n  seed:\n    renter-1: 5000000000000000000\n    renter-2: \"250000000000000000000000\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "5000000000000000000", cfg.Wallet.Seed["renter-1"].String())
	assert.Equal(t, "250000000000000000000000", cfg.Wallet.Seed["renter-2"].String())

	_, err = Parse([]byte(baseYAML + "wallet:\n  seed:\n    renter-1: 0\n"))
	assert.Error(t, err)
}
