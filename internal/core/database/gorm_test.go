package database

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewGormSQLite(t *testing.T) {
	db, err := NewGorm(Opts{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "nested", "test.db"),
		LogLevel: "silent",
		Log:      zap.NewNop(),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())
}

func TestNewGormUnsupportedDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"})
	assert.True(t, errors.Is(err, ErrUnsupportedDriver))
}

func TestNormalizeMySQLDSN(t *testing.T) {
	tests := []struct {
		name string
		in   string
		user string
		pass string
		want string
	}{
		{
			name: "native dsn untouched",
			in:   "root:pw@tcp(127.0.0.1:3306)/acct?parseTime=true",
			want: "root:pw@tcp(127.0.0.1:3306)/acct?parseTime=true",
		},
		{
			name: "url form",
			in:   "mysql://root:pw@db:3306/acct",
			want: "root:pw@tcp(db:3306)/acct?charset=utf8mb4&parseTime=true",
		},
		{
			name: "jdbc with overrides",
			in:   "jdbc:mysql://db:3306/acct?useSSL=false&serverTimezone=UTC",
			user: "svc",
			pass: "secret",
			want: "svc:secret@tcp(db:3306)/acct?charset=utf8mb4&loc=UTC&parseTime=true&tls=false",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeMySQLDSN(tt.in, tt.user, tt.pass))
		})
	}
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "root:****@tcp(db:3306)/acct", maskDSN("root:pw@tcp(db:3306)/acct"))
	assert.Equal(t, "tcp(db:3306)/acct", maskDSN("tcp(db:3306)/acct"))
}
