package config

import (
	"time"

	"github.com/Luizsilva-repros/intranet/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Directory holds the startup settings of the AD integration.
// Once an administrator saves a directory config it is persisted in the
// settings table and wins over these values.
type Directory struct {
	Enabled       bool
	Backend       string // memory or ldap
	Domain        string
	Server        string // ldap:// or ldaps:// uri
	BaseDN        string
	AdminUser     string
	AdminPassword string
	UserFilter    string
	GroupAttr     string
	Timeout       int // seconds
	SkipVerify    bool
}

// Sync holds the cache-sync queue settings.
type Sync struct {
	QueueSize int
	Timeout   time.Duration // per job
}

// Seed holds the bootstrap local administrator.
type Seed struct {
	AdminEmail      string
	AdminName       string
	AdminCredential string
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Directory Directory
	Sync      Sync
	Seed      Seed
}

// Webserver implement webserver settings.
type Webserver struct {
	Domain       string  // domain name for the webserver
	Port         int     // listening port for the webserver
	ShutDownTime int     // wait time for shutdown
	URL          string  // base url for the webserver
	Session      Session // session settings
}
