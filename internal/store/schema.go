package store

const schema = `
CREATE TABLE IF NOT EXISTS repositories (
    alias TEXT PRIMARY KEY,
    url TEXT NOT NULL,
    enabled BOOLEAN NOT NULL DEFAULT 1,
    position INTEGER NOT NULL,
    refreshed_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS catalog (
    name TEXT NOT NULL,
    version TEXT NOT NULL,
    arch TEXT NOT NULL,
    repo TEXT NOT NULL,
    summary TEXT,
    PRIMARY KEY (name, version, arch, repo),
    FOREIGN KEY (repo) REFERENCES repositories(alias) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS installed (
    name TEXT PRIMARY KEY,
    version TEXT NOT NULL,
    arch TEXT NOT NULL,
    repo TEXT,
    installed_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS bookmarks (
    id INTEGER PRIMARY KEY,
    position INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_repositories_position ON repositories(position);
CREATE INDEX IF NOT EXISTS idx_catalog_name ON catalog(name);
CREATE INDEX IF NOT EXISTS idx_catalog_repo ON catalog(repo);
CREATE INDEX IF NOT EXISTS idx_bookmarks_position ON bookmarks(position);
`
