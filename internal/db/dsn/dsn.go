// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Luizsilva-repros/intranet/internal/config"
)

// Create builds the mysql Data Source Name from the configuration.
func Create(dbCfg *config.Config) string {
	out := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		dbCfg.DB.User,
		dbCfg.DB.Password,
		dbCfg.DB.Host,
		dbCfg.DB.Port,
		dbCfg.DB.Name,
		dbCfg.DB.Extras,
	)

	return out
}

// Postgres builds a postgres connection URI from the configuration.
func Postgres(dbCfg *config.Config) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(dbCfg.DB.User, dbCfg.DB.Password),
		Host:     dbCfg.DB.Host + ":" + strconv.Itoa(dbCfg.DB.Port),
		Path:     "/" + dbCfg.DB.Name,
		RawQuery: dbCfg.DB.Extras,
	}

	return u.String()
}

// Dialector returns the gorm dialector for the configured engine.
func Dialector(dbCfg *config.Config) (gorm.Dialector, error) {
	switch dbCfg.DB.GormEngine {
	case config.GormEngineSQLite, "":
		return sqlite.Open(dbCfg.DB.Name), nil
	case config.GormEngineMySQL:
		return mysql.Open(Create(dbCfg)), nil
	case config.GormEnginePostgres:
		return postgres.Open(Postgres(dbCfg)), nil
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrUnknownGormEngine, dbCfg.DB.GormEngine)
	}
}
