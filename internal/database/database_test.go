package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"ocrdocs/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestBuildPostgresDSN(t *testing.T) {
	base := config.DatabaseConfig{Host: "db", Port: "5432", User: "ocr", Name: "docs"}
	with := func(mut func(c *config.DatabaseConfig)) config.DatabaseConfig {
		c := base
		mut(&c)
		return c
	}

	tests := []struct {
		name    string
		config  config.DatabaseConfig
		want    string
		wantErr bool
	}{
		{
			name: "password and sslmode",
			config: with(func(c *config.DatabaseConfig) {
				c.Password, c.SSLMode = "pass", "disable"
			}),
			want: "postgres://ocr:pass@db:5432/docs?sslmode=disable",
		},
		{
			name: "password is escaped",
			config: with(func(c *config.DatabaseConfig) {
				c.Password = "p@ss/word"
			}),
			want: "postgres://ocr:p%40ss%2Fword@db:5432/docs",
		},
		{
			name:   "no password, no sslmode",
			config: base,
			want:   "postgres://ocr@db:5432/docs",
		},
		{name: "missing host", config: with(func(c *config.DatabaseConfig) { c.Host = "" }), wantErr: true},
		{name: "missing port", config: with(func(c *config.DatabaseConfig) { c.Port = "" }), wantErr: true},
		{name: "missing user", config: with(func(c *config.DatabaseConfig) { c.User = "" }), wantErr: true},
		{name: "missing name", config: with(func(c *config.DatabaseConfig) { c.Name = "" }), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildPostgresDSN(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// stubOpen makes NewPostgres receive db (or err) instead of dialing.
func stubOpen(t *testing.T, db *sql.DB, err error) {
	t.Helper()
	orig := sqlOpen
	sqlOpen = func(string, string) (*sql.DB, error) { return db, err }
	t.Cleanup(func() { sqlOpen = orig })
}

func TestNewPostgres(t *testing.T) {
	conf := config.DatabaseConfig{
		Host:               "db",
		Port:               "5432",
		User:               "ocr",
		Password:           "pass",
		Name:               "docs",
		MaxOpenConns:       7,
		MaxIdleConns:       3,
		ConnMaxLifetimeSec: 300,
	}

	ctx := context.Background()

	t.Run("applies pool settings and logs the connect", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()
		stubOpen(t, db, nil)
		log, hook := test.NewNullLogger()

		mock.ExpectPing()

		got, err := NewPostgres(ctx, conf, log)
		require.NoError(t, err)
		assert.Equal(t, 7, got.Stats().MaxOpenConnections)
		assert.NoError(t, mock.ExpectationsWereMet())

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, logrus.InfoLevel, entry.Level)
		assert.Equal(t, "db_connect_success", entry.Data["event"])
		assert.Equal(t, "database", entry.Data["component"])
		assert.Equal(t, "db", entry.Data["db_host"])
		assert.Equal(t, 7, entry.Data["max_open_conns"])
		assert.NotContains(t, entry.Data, "password")
	})

	t.Run("open error", func(t *testing.T) {
		stubOpen(t, nil, errors.New("open error"))
		log, _ := test.NewNullLogger()

		got, err := NewPostgres(ctx, conf, log)
		assert.EqualError(t, err, "sql open: open error")
		assert.Nil(t, got)
	})

	t.Run("ping error", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		stubOpen(t, db, nil)
		log, hook := test.NewNullLogger()

		mock.ExpectPing().WillReturnError(errors.New("ping failed"))

		got, err := NewPostgres(ctx, conf, log)
		assert.EqualError(t, err, "db ping: ping failed")
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, logrus.ErrorLevel, entry.Level)
		assert.Equal(t, "db_connect_failed", entry.Data["event"])
	})

	t.Run("invalid config", func(t *testing.T) {
		log, hook := test.NewNullLogger()

		got, err := NewPostgres(ctx, config.DatabaseConfig{}, log)
		assert.Error(t, err)
		assert.Nil(t, got)
		assert.Empty(t, hook.AllEntries())
	})
}

func TestApplyPool(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	applyPool(db, config.DatabaseConfig{})
	assert.Equal(t, 0, db.Stats().MaxOpenConnections)

	applyPool(db, config.DatabaseConfig{MaxOpenConns: 4})
	assert.Equal(t, 4, db.Stats().MaxOpenConnections)
}

func TestNewMongo(t *testing.T) {
	t.Run("missing uri", func(t *testing.T) {
		client, err := NewMongo(config.MongoConfig{})
		assert.Error(t, err)
		assert.Nil(t, client)
	})

	t.Run("malformed uri", func(t *testing.T) {
		client, err := NewMongo(config.MongoConfig{URI: "http://not-mongo"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "mongo connect")
		assert.Nil(t, client)
	})

	t.Run("connect error", func(t *testing.T) {
		orig := mongoConnect
		mongoConnect = func(ctx context.Context, opts ...*options.ClientOptions) (*mongo.Client, error) {
			return nil, errors.New("dial failed")
		}
		defer func() { mongoConnect = orig }()

		client, err := NewMongo(config.MongoConfig{URI: "mongodb://localhost:27017"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "mongo connect: dial failed")
		assert.Nil(t, client)
	})
}
