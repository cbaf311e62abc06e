package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Repository operations

// UpsertRepository registers a repository. Re-registering an existing alias
// updates its URL and keeps its position and enabled flag.
func (s *Store) UpsertRepository(alias, url string) error {
	query := `
		INSERT INTO repositories (alias, url, enabled, position)
		VALUES (?, ?, 1, (SELECT COALESCE(MAX(position), 0) + 1 FROM repositories))
		ON CONFLICT(alias) DO UPDATE SET url = excluded.url
	`

	if _, err := s.db.Exec(query, alias, url); err != nil {
		return fmt.Errorf("failed to upsert repository %s: %w", alias, err)
	}
	return nil
}

// SetRepositoryEnabled enables or disables a registered repository.
func (s *Store) SetRepositoryEnabled(alias string, enabled bool) error {
	result, err := s.db.Exec(`UPDATE repositories SET enabled = ? WHERE alias = ?`, enabled, alias)
	if err != nil {
		return fmt.Errorf("failed to update repository %s: %w", alias, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("repository %s not found", alias)
	}
	return nil
}

// GetRepository retrieves a repository by alias.
func (s *Store) GetRepository(alias string) (*Repository, error) {
	query := `SELECT alias, url, enabled, refreshed_at FROM repositories WHERE alias = ?`

	repo, err := scanRepository(s.db.QueryRow(query, alias))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("repository %s not found", alias)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get repository %s: %w", alias, err)
	}
	return repo, nil
}

// ListRepositories returns all repositories in registration order.
func (s *Store) ListRepositories() ([]*Repository, error) {
	query := `SELECT alias, url, enabled, refreshed_at FROM repositories ORDER BY position`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}
	defer rows.Close()

	var repos []*Repository
	for rows.Next() {
		repo, err := scanRepository(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan repository row: %w", err)
		}
		repos = append(repos, repo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating repositories: %w", err)
	}
	return repos, nil
}

// DeleteRepository removes a repository and its catalog entries.
func (s *Store) DeleteRepository(alias string) error {
	result, err := s.db.Exec(`DELETE FROM repositories WHERE alias = ?`, alias)
	if err != nil {
		return fmt.Errorf("failed to delete repository %s: %w", alias, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("repository %s not found", alias)
	}
	return nil
}

// TouchEnabledRepositories stamps refreshed_at on every enabled repository
// and returns how many were touched.
func (s *Store) TouchEnabledRepositories(at time.Time) (int64, error) {
	result, err := s.db.Exec(`UPDATE repositories SET refreshed_at = ? WHERE enabled = 1`,
		at.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to refresh repositories: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return rows, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRepository(row rowScanner) (*Repository, error) {
	var repo Repository
	var refreshedAt sql.NullString

	if err := row.Scan(&repo.Alias, &repo.URL, &repo.Enabled, &refreshedAt); err != nil {
		return nil, err
	}

	if refreshedAt.Valid && refreshedAt.String != "" {
		t, err := time.Parse(time.RFC3339, refreshedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse refreshed_at for %s: %w", repo.Alias, err)
		}
		repo.RefreshedAt = t
	}
	return &repo, nil
}

// Catalog operations

// InsertCatalogPackage inserts or replaces a package offered by a repository.
func (s *Store) InsertCatalogPackage(pkg *CatalogPackage) error {
	query := `
		INSERT OR REPLACE INTO catalog (name, version, arch, repo, summary)
		VALUES (?, ?, ?, ?, ?)
	`

	if _, err := s.db.Exec(query, pkg.Name, pkg.Version, pkg.Arch, pkg.Repo, pkg.Summary); err != nil {
		return fmt.Errorf("failed to insert catalog package %s: %w", pkg.Name, err)
	}
	return nil
}

// FindCatalogPackages returns the packages named name offered by enabled
// repositories, ordered by repository position.
func (s *Store) FindCatalogPackages(name string) ([]*CatalogPackage, error) {
	query := `
		SELECT c.name, c.version, c.arch, c.repo, COALESCE(c.summary, '')
		FROM catalog c
		JOIN repositories r ON r.alias = c.repo
		WHERE c.name = ? AND r.enabled = 1
		ORDER BY r.position, c.version
	`
	return s.queryCatalog(query, name)
}

// ListCatalog returns every catalog entry.
func (s *Store) ListCatalog() ([]*CatalogPackage, error) {
	query := `
		SELECT name, version, arch, repo, COALESCE(summary, '')
		FROM catalog
		ORDER BY name, repo, version
	`
	return s.queryCatalog(query)
}

func (s *Store) queryCatalog(query string, args ...any) ([]*CatalogPackage, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	var packages []*CatalogPackage
	for rows.Next() {
		var pkg CatalogPackage
		if err := rows.Scan(&pkg.Name, &pkg.Version, &pkg.Arch, &pkg.Repo, &pkg.Summary); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row: %w", err)
		}
		packages = append(packages, &pkg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalog: %w", err)
	}
	return packages, nil
}

// Installed package operations

// InsertInstalled records an installed package, replacing any previous
// version of the same name.
func (s *Store) InsertInstalled(pkg *InstalledPackage) error {
	installedAt := pkg.InstalledAt
	if installedAt.IsZero() {
		installedAt = time.Now()
	}

	query := `
		INSERT OR REPLACE INTO installed (name, version, arch, repo, installed_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query, pkg.Name, pkg.Version, pkg.Arch, pkg.Repo,
		installedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert installed package %s: %w", pkg.Name, err)
	}
	return nil
}

// GetInstalled retrieves an installed package by name.
func (s *Store) GetInstalled(name string) (*InstalledPackage, error) {
	query := `
		SELECT name, version, arch, COALESCE(repo, ''), installed_at
		FROM installed
		WHERE name = ?
	`

	pkg, err := scanInstalled(s.db.QueryRow(query, name))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("package %s not installed", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get installed package %s: %w", name, err)
	}
	return pkg, nil
}

// ListInstalled returns all installed packages ordered by name.
func (s *Store) ListInstalled() ([]*InstalledPackage, error) {
	query := `
		SELECT name, version, arch, COALESCE(repo, ''), installed_at
		FROM installed
		ORDER BY name
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list installed packages: %w", err)
	}
	defer rows.Close()

	var packages []*InstalledPackage
	for rows.Next() {
		pkg, err := scanInstalled(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan installed row: %w", err)
		}
		packages = append(packages, pkg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating installed packages: %w", err)
	}
	return packages, nil
}

// DeleteInstalled removes an installed package record.
func (s *Store) DeleteInstalled(name string) error {
	if _, err := s.db.Exec(`DELETE FROM installed WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete installed package %s: %w", name, err)
	}
	return nil
}

func scanInstalled(row rowScanner) (*InstalledPackage, error) {
	var pkg InstalledPackage
	var installedAt string

	if err := row.Scan(&pkg.Name, &pkg.Version, &pkg.Arch, &pkg.Repo, &installedAt); err != nil {
		return nil, err
	}

	t, err := time.Parse(time.RFC3339, installedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse installed_at for %s: %w", pkg.Name, err)
	}
	pkg.InstalledAt = t
	return &pkg, nil
}

// Bookmark operations

// InsertBookmark adds id to the bookmark set. Inserting an existing id is a
// no-op and keeps its original position.
func (s *Store) InsertBookmark(id uint32) error {
	query := `
		INSERT OR IGNORE INTO bookmarks (id, position)
		VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM bookmarks))
	`

	if _, err := s.db.Exec(query, int64(id)); err != nil {
		return fmt.Errorf("failed to insert bookmark %d: %w", id, err)
	}
	return nil
}

// ListBookmarks returns bookmark ids in insertion order.
func (s *Store) ListBookmarks() ([]uint32, error) {
	rows, err := s.db.Query(`SELECT id FROM bookmarks ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	defer rows.Close()

	var ids []uint32
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark row: %w", err)
		}
		ids = append(ids, uint32(id))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookmarks: %w", err)
	}
	return ids, nil
}

// DeleteBookmark removes id from the bookmark set. Removing an absent id is
// not an error.
func (s *Store) DeleteBookmark(id uint32) error {
	if _, err := s.db.Exec(`DELETE FROM bookmarks WHERE id = ?`, int64(id)); err != nil {
		return fmt.Errorf("failed to delete bookmark %d: %w", id, err)
	}
	return nil
}
