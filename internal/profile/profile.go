package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	// DriverFile stores the master sequence as a flat UTF-8 text file.
	DriverFile = "file"
	// DriverSQLite stores the master sequence in a SQLite database.
	DriverSQLite = "sqlite"
	// DriverPostgres stores the master sequence in a PostgreSQL database.
	DriverPostgres = "postgres"

	defaultCharacterFile = "data.txt"
	defaultMaxRenders    = 3
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// Driver is the character store driver (file, sqlite or postgres)
	Driver string
	// DSN points to where the SQL drivers store their data
	DSN string
	// CharacterFile is the flat master character list used by the file driver
	CharacterFile string
	// Version is the current version of server
	Version string

	// Rendering configuration
	FontPaths  []string // STUDYSHEET_FONT_PATHS, separated by the OS list separator
	MaxRenders int      // STUDYSHEET_MAX_RENDERS (default: 3)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads rendering configuration from environment variables.
// Values already set on the profile take precedence.
func (p *Profile) FromEnv() {
	if len(p.FontPaths) == 0 {
		if raw := os.Getenv("STUDYSHEET_FONT_PATHS"); raw != "" {
			p.FontPaths = filepath.SplitList(raw)
		}
	}
	if p.MaxRenders <= 0 {
		n, err := strconv.Atoi(getEnvOrDefault("STUDYSHEET_MAX_RENDERS", strconv.Itoa(defaultMaxRenders)))
		if err != nil || n <= 0 {
			n = defaultMaxRenders
		}
		p.MaxRenders = n
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}
	if p.Driver == "" {
		p.Driver = DriverFile
	}
	switch p.Driver {
	case DriverFile, DriverSQLite, DriverPostgres:
	default:
		return errors.Errorf("unknown driver %q: expected one of file, sqlite, postgres", p.Driver)
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "studysheet")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/studysheet"
		}
	}
	if p.Data == "" {
		p.Data = "."
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}
	p.Data = dataDir

	switch p.Driver {
	case DriverFile:
		if p.CharacterFile == "" {
			p.CharacterFile = defaultCharacterFile
		}
		if !filepath.IsAbs(p.CharacterFile) {
			p.CharacterFile = filepath.Join(dataDir, p.CharacterFile)
		}
	case DriverSQLite:
		if p.DSN == "" {
			p.DSN = filepath.Join(dataDir, fmt.Sprintf("studysheet_%s.db", p.Mode))
		}
	case DriverPostgres:
		if p.DSN == "" {
			return errors.New("dsn is required for the postgres driver")
		}
	}

	if p.MaxRenders <= 0 {
		p.MaxRenders = defaultMaxRenders
	}
	return nil
}
