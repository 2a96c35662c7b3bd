package config

import (
	"errors"
	"flag"
	"io/fs"
	"net"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

type Config struct {
	Addr        string
	DBDriver    string
	DBUrl       string
	TokenSecret string
	TokenTTL    time.Duration
	StaticDir   string
	CORSOrigins []string
	AdminUser   string
	AdminPass   string
	Debug       bool
}

// ParseFlags reads an optional .env file into the environment, then parses
// the command line. Environment values act as flag defaults.
func ParseFlags() (Config, error) {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}
	return Parse(os.Args[1:], os.Getenv)
}

func Parse(args []string, getenv func(string) string) (cfg Config, err error) {
	env := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	fl := flag.NewFlagSet("wellness-hub", flag.ContinueOnError)

	var host string
	fl.StringVar(&host, "host", env("HOST", "0.0.0.0"), "listen host name")
	var port uint
	fl.UintVar(&port, "port", envUint(env("PORT", ""), 80), "listen port number")
	fl.StringVar(&cfg.DBDriver, "db-driver", env("DB_DRIVER", DriverSQLite), "database driver: sqlite3 or postgres")
	fl.StringVar(&cfg.DBUrl, "db-url", env("DB_URL", "wellness.sqlite"), "SQLite3 file path or PostgreSQL connection URL")
	fl.StringVar(&cfg.TokenSecret, "token-secret", env("TOKEN_SECRET", ""), "secret key for token encryption and decryption")
	var ttl uint
	fl.UintVar(&ttl, "token-ttl", envUint(env("TOKEN_TTL", ""), 120), "token TTL in seconds")
	fl.StringVar(&cfg.StaticDir, "static-dir", env("STATIC_DIR", "web"), "root directory of the public, admin and student pages")
	var origins string
	fl.StringVar(&origins, "cors-origins", env("CORS_ORIGINS", ""), "comma separated list of allowed CORS origins")
	fl.StringVar(&cfg.AdminUser, "admin-user", env("ADMIN_USER", ""), "bootstrap counselor account, created if missing")
	fl.StringVar(&cfg.AdminPass, "admin-pass", env("ADMIN_PASS", ""), "password of the bootstrap counselor account")
	fl.BoolVar(&cfg.Debug, "debug", env("DEBUG", "") == "true", "log at DEBUG level")

	if err = fl.Parse(args); err != nil {
		return
	}

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second
	cfg.CORSOrigins = splitList(origins)

	switch {
	case cfg.TokenSecret == "":
		err = errors.New("missing parameter -token-secret")
	case cfg.DBDriver != DriverSQLite && cfg.DBDriver != DriverPostgres:
		err = errors.New("unsupported -db-driver " + strconv.Quote(cfg.DBDriver))
	case cfg.AdminUser != "" && cfg.AdminPass == "":
		err = errors.New("missing parameter -admin-pass")
	}

	return
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}

func envUint(v string, def uint) uint {
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return def
	}
	return uint(n)
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
