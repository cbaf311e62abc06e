package repo

import (
	"fmt"

	"github.com/blackwell-systems/pkgstash/internal/store"
)

// Repo is a registered repository and its enabled flag.
type Repo struct {
	Alias   string
	URL     string
	Enabled bool
}

// Registry is the repository registry backed by the state database.
type Registry struct {
	store  *store.Store
	naming Naming
}

// NewRegistry creates a Registry over st.
func NewRegistry(st *store.Store, naming Naming) *Registry {
	return &Registry{store: st, naming: naming}
}

// Naming returns the naming rules the registry was created with.
func (r *Registry) Naming() Naming {
	return r.naming
}

// Repos lists every registered repository in registration order.
func (r *Registry) Repos() ([]Repo, error) {
	rows, err := r.store.ListRepositories()
	if err != nil {
		return nil, err
	}

	repos := make([]Repo, 0, len(rows))
	for _, row := range rows {
		repos = append(repos, Repo{Alias: row.Alias, URL: row.URL, Enabled: row.Enabled})
	}
	return repos, nil
}

// AddRepo registers a repository. Adding an alias that already exists
// updates its URL.
func (r *Registry) AddRepo(alias, url string) error {
	if alias == "" {
		return fmt.Errorf("repository alias cannot be empty")
	}
	if url == "" {
		return fmt.Errorf("repository url cannot be empty")
	}
	return r.store.UpsertRepository(alias, url)
}

// AddAuthor registers the managed repository of author.
func (r *Registry) AddAuthor(author string) (string, error) {
	alias := r.naming.Alias(author)
	if err := r.AddRepo(alias, r.naming.URL(author)); err != nil {
		return "", err
	}
	return alias, nil
}

// SetEnabled enables or disables a registered repository.
func (r *Registry) SetEnabled(alias string, enabled bool) error {
	return r.store.SetRepositoryEnabled(alias, enabled)
}

// RemoveRepo unregisters a repository.
func (r *Registry) RemoveRepo(alias string) error {
	return r.store.DeleteRepository(alias)
}
