package db

// Config selects the dialect and connection pool settings. Type is one of
// postgres, mysql or sqlite; sqlite treats Name as the file path.
type Config struct {
	Type            string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxIdleConn     int
	MaxOpenConn     int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}
