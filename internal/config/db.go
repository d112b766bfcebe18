package config

const (
	// GormEngineSQLite selects the pure Go sqlite driver; Name is the database file.
	GormEngineSQLite = "sqlite"
	// GormEngineMySQL selects the mysql driver.
	GormEngineMySQL = "mysql"
	// GormEnginePostgres selects the postgres driver.
	GormEnginePostgres = "postgres"
)

// DB holds the database configuration settings.
type DB struct {
	Extras     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	GormEngine string
}
