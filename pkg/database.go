package pkg

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/migrate"

	"postforge/pkg/models"
)

type DatabaseConfig struct {
	// Database hostname, defaults to `localhost`
	Host string `mapstructure:"host"`

	// Port to use, defaults to `5432`
	Port int `mapstructure:"port"`

	// Database name, e.g. `postforge`
	DbName string `mapstructure:"dbName" validate:"required"`

	// Connection username
	Username *string `mapstructure:"username"`

	// Connection password
	Password *string `mapstructure:"password"`

	// Additional connection options, e.g. `sslmode: disable`
	Options map[string]string `mapstructure:"options"`
}

func (config *DatabaseConfig) ParsedUserPassDSN() string {
	userDSN := ""
	if config.Username != nil {
		userDSN = *config.Username

		if config.Password != nil {
			userDSN = fmt.Sprintf("%s:%s", userDSN, *config.Password)
		}

		userDSN = fmt.Sprintf("%s@", userDSN)
	}
	return userDSN
}

func (config *DatabaseConfig) ParsedHostname() string {
	hostname := "localhost"
	if config.Host != "" {
		hostname = config.Host
	}
	return hostname
}

func (config *DatabaseConfig) ParsedPort() int {
	port := 5432
	if config.Port != 0 {
		port = config.Port
	}
	return port
}

func (config *DatabaseConfig) ParsedOptions() string {
	options := make(url.Values)
	for key, val := range config.Options {
		options.Set(key, val)
	}
	return options.Encode()
}

func (config *DatabaseConfig) ParsedDSN() string {
	return fmt.Sprintf("postgres://%s%s:%d/%s?%s", config.ParsedUserPassDSN(), config.ParsedHostname(), config.ParsedPort(), config.DbName, config.ParsedOptions())
}

func (config *DatabaseConfig) ParsedLogSafeDSN() string {
	return fmt.Sprintf("%s:%d/%s", config.ParsedHostname(), config.ParsedPort(), config.DbName)
}

type Database struct {
	config *DatabaseConfig
	db     *bun.DB
}

func (d *Database) DB() *bun.DB {
	return d.db
}

func (d *Database) Close() {
	if err := d.db.Close(); err != nil {
		logrus.WithError(err).Errorf("failed to close db")
	}
}

// Migrate applies the schema migrations registered in models.
func (d *Database) Migrate(ctx context.Context) error {
	migrator := migrate.NewMigrator(d.db, models.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return errors.WithMessagef(err, "failed to init migrations in db %s", d.config.ParsedLogSafeDSN())
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return errors.WithMessagef(err, "failed to perform migrations in db %s", d.config.ParsedLogSafeDSN())
	}

	if group.ID == 0 {
		return nil
	}

	logrus.WithField("dsn", d.config.ParsedLogSafeDSN()).Infof("migrated database to %s", group)
	return nil
}

func NewDB(config *DatabaseConfig) (*Database, error) {
	dsn := config.ParsedDSN()

	sqlDB := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	bunDB := bun.NewDB(sqlDB, pgdialect.New())

	if logrus.IsLevelEnabled(logrus.DebugLevel) && os.Getenv("PF_VERBOSE_DATABASE") == "true" {
		bunDB.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := bunDB.Ping(); err != nil {
		defer bunDB.Close()
		return nil, errors.WithMessage(err, "failed to connect to database")
	}

	logrus.WithField("dsn", config.ParsedLogSafeDSN()).Info("connected to database")

	return &Database{config, bunDB}, nil
}
