package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/studysheet/internal/profile"
	"github.com/hrygo/studysheet/internal/version"
)

// Migration files live in store/migration/{driver}/{minor}/NN__description.sql.
// LATEST.sql holds the full schema and is applied to fresh databases only.
// The schema version is kept in system_setting under SchemaVersionSettingName.

//go:embed migration
var migrationFS embed.FS

const (
	// MigrateFileNameSplit is the split character between the patch version and the description in the migration file name.
	// For example, "1__create_table.sql".
	MigrateFileNameSplit = "__"
	// LatestSchemaFileName is the name of the latest schema file.
	LatestSchemaFileName = "LATEST.sql"
	// SchemaVersionSettingName is the system_setting row holding the schema version.
	SchemaVersionSettingName = "schema_version"

	defaultSchemaVersion = "0.0.0"
)

func getSchemaVersionOrDefault(schemaVersion string) string {
	if schemaVersion == "" {
		return defaultSchemaVersion
	}
	return schemaVersion
}

// shouldApplyMigration determines if a migration file should be applied.
// It checks if the file's version is between the current DB version and target version.
func shouldApplyMigration(fileVersion, currentDBVersion, targetVersion string) bool {
	currentDBVersionSafe := getSchemaVersionOrDefault(currentDBVersion)
	return version.IsVersionGreaterThan(fileVersion, currentDBVersionSafe) &&
		version.IsVersionGreaterOrEqualThan(targetVersion, fileVersion)
}

// Migrate brings the database schema to the version of this binary.
// Drivers without a SQL handle (the flat file driver) have no schema.
func (s *Store) Migrate(ctx context.Context) error {
	if s.driver.GetDB() == nil {
		return nil
	}
	if err := s.preMigrate(ctx); err != nil {
		return errors.Wrap(err, "failed to pre-migrate")
	}

	dbSchemaVersion, err := s.driver.GetSystemSetting(ctx, SchemaVersionSettingName)
	if err != nil {
		return errors.Wrap(err, "failed to get database schema version")
	}
	currentSchemaVersion, err := s.GetCurrentSchemaVersion()
	if err != nil {
		return errors.Wrap(err, "failed to get current schema version")
	}
	if dbSchemaVersion != "" && version.IsVersionGreaterThan(dbSchemaVersion, currentSchemaVersion) {
		slog.Error("cannot downgrade schema version",
			slog.String("databaseVersion", dbSchemaVersion),
			slog.String("currentVersion", currentSchemaVersion),
		)
		return errors.Errorf("cannot downgrade schema version from %s to %s", dbSchemaVersion, currentSchemaVersion)
	}
	if dbSchemaVersion == "" || version.IsVersionGreaterThan(currentSchemaVersion, dbSchemaVersion) {
		if err := s.applyMigrations(ctx, dbSchemaVersion, currentSchemaVersion); err != nil {
			return errors.Wrap(err, "failed to apply migrations")
		}
	}
	return nil
}

// applyMigrations applies all migration files between current and target schema versions
// in a single transaction.
func (s *Store) applyMigrations(ctx context.Context, currentSchemaVersion, targetSchemaVersion string) error {
	filePaths, err := fs.Glob(migrationFS, fmt.Sprintf("%s*/*.sql", s.getMigrationBasePath()))
	if err != nil {
		return errors.Wrap(err, "failed to read migration files")
	}
	sort.Strings(filePaths)

	tx, err := s.driver.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()

	slog.Info("start migration",
		slog.String("currentSchemaVersion", getSchemaVersionOrDefault(currentSchemaVersion)),
		slog.String("targetSchemaVersion", targetSchemaVersion))

	migrationsApplied := 0
	for _, filePath := range filePaths {
		fileSchemaVersion, err := s.getSchemaVersionOfMigrateScript(filePath)
		if err != nil {
			return errors.Wrap(err, "failed to get schema version of migrate script")
		}
		if !shouldApplyMigration(fileSchemaVersion, currentSchemaVersion, targetSchemaVersion) {
			continue
		}
		slog.Info("applying migration", slog.String("file", filePath), slog.String("version", fileSchemaVersion))
		bytes, err := migrationFS.ReadFile(filePath)
		if err != nil {
			return errors.Wrapf(err, "failed to read migration file: %s", filePath)
		}
		if err := s.execute(ctx, tx, string(bytes)); err != nil {
			return errors.Wrapf(err, "failed to execute migration %s", filePath)
		}
		migrationsApplied++
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit migration transaction")
	}
	slog.Info("migration completed", slog.Int("migrationsApplied", migrationsApplied))

	return s.driver.UpsertSystemSetting(ctx, SchemaVersionSettingName, targetSchemaVersion)
}

// preMigrate applies the latest schema to a database that is not initialized yet.
func (s *Store) preMigrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check if database is initialized")
	}
	if initialized {
		return nil
	}

	filePath := s.getMigrationBasePath() + LatestSchemaFileName
	bytes, err := migrationFS.ReadFile(filePath)
	if err != nil {
		return errors.Wrapf(err, "failed to read latest schema file %s", filePath)
	}
	tx, err := s.driver.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()

	slog.Info("initializing new database with latest schema", slog.String("file", filePath))
	if err := s.execute(ctx, tx, string(bytes)); err != nil {
		return errors.Wrapf(err, "failed to execute SQL file %s", filePath)
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	schemaVersion, err := s.GetCurrentSchemaVersion()
	if err != nil {
		return errors.Wrap(err, "failed to get current schema version")
	}
	slog.Info("database initialized successfully", slog.String("schemaVersion", schemaVersion))
	return s.driver.UpsertSystemSetting(ctx, SchemaVersionSettingName, schemaVersion)
}

func (s *Store) getMigrationBasePath() string {
	return fmt.Sprintf("migration/%s/", s.profile.Driver)
}

// GetCurrentSchemaVersion returns the schema version this binary expects: the
// newest migration of the current minor version, or "<minor>.0" when there is none.
func (s *Store) GetCurrentSchemaVersion() (string, error) {
	currentVersion := version.GetCurrentVersion(s.profile.Mode)
	minorVersion := version.GetMinorVersion(currentVersion)
	filePaths, err := fs.Glob(migrationFS, fmt.Sprintf("%s%s/*.sql", s.getMigrationBasePath(), minorVersion))
	if err != nil {
		return "", errors.Wrap(err, "failed to read migration files")
	}

	sort.Strings(filePaths)
	if len(filePaths) == 0 {
		return fmt.Sprintf("%s.0", minorVersion), nil
	}
	return s.getSchemaVersionOfMigrateScript(filePaths[len(filePaths)-1])
}

// getSchemaVersionOfMigrateScript extracts "major.minor.patch" from a migration file path.
func (s *Store) getSchemaVersionOfMigrateScript(filePath string) (string, error) {
	if strings.HasSuffix(filePath, LatestSchemaFileName) {
		return s.GetCurrentSchemaVersion()
	}

	elements := strings.Split(filepath.ToSlash(filePath), "/")
	if len(elements) < 2 {
		return "", errors.Errorf("invalid file path: %s", filePath)
	}
	minorVersion := elements[len(elements)-2]
	rawPatchVersion := strings.Split(elements[len(elements)-1], MigrateFileNameSplit)[0]
	patchVersion, err := strconv.Atoi(rawPatchVersion)
	if err != nil {
		return "", errors.Wrapf(err, "failed to convert patch version to int: %s", rawPatchVersion)
	}
	return fmt.Sprintf("%s.%d", minorVersion, patchVersion+1), nil
}

// execute runs a SQL script inside tx. PostgreSQL scripts are split into
// single statements first.
func (s *Store) execute(ctx context.Context, tx *sql.Tx, stmt string) error {
	if s.profile.Driver != profile.DriverPostgres {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to execute statement")
		}
		return nil
	}
	for i, one := range splitSQL(stmt) {
		if _, err := tx.ExecContext(ctx, one); err != nil {
			return errors.Wrapf(err, "failed to execute statement %d: %s", i+1, one)
		}
	}
	return nil
}

// splitSQL splits a script on semicolons outside single-quoted strings and
// drops "--" comment lines.
func splitSQL(script string) []string {
	var statements []string
	var current strings.Builder
	inSingleQuote := false

	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if !inSingleQuote && (trimmed == "" || strings.HasPrefix(trimmed, "--")) {
			continue
		}
		for _, r := range line {
			switch {
			case r == '\'':
				inSingleQuote = !inSingleQuote
				current.WriteRune(r)
			case r == ';' && !inSingleQuote:
				if stmt := strings.TrimSpace(current.String()); stmt != "" {
					statements = append(statements, stmt)
				}
				current.Reset()
			default:
				current.WriteRune(r)
			}
		}
		current.WriteRune('\n')
	}
	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		statements = append(statements, stmt)
	}
	return statements
}
