package backup

import (
	"sort"

	"github.com/blackwell-systems/pkgstash/internal/pm"
	"github.com/blackwell-systems/pkgstash/internal/version"
)

// selectInstallBatch picks the newest candidate for every package name and
// drops names whose installed version is already at least that new. Names
// are processed in sorted order; on equal versions the first candidate wins.
func selectInstallBatch(pending map[string][]string, installed map[string]string) []string {
	names := make([]string, 0, len(pending))
	for name := range pending {
		names = append(names, name)
	}
	sort.Strings(names)

	var ids []string
	for _, name := range names {
		best, bestVersion, ok := newest(pending[name])
		if !ok {
			continue
		}
		if v, has := installed[name]; has && !version.Parse(v).Less(bestVersion) {
			continue
		}
		ids = append(ids, best)
	}
	return ids
}

func newest(candidates []string) (string, version.Version, bool) {
	var (
		best        string
		bestVersion version.Version
		found       bool
	)
	for _, pid := range candidates {
		id, ok := pm.ParseID(pid)
		if !ok {
			continue
		}
		v := version.Parse(id.Version)
		if !found || bestVersion.Less(v) {
			best, bestVersion, found = pid, v, true
		}
	}
	return best, bestVersion, found
}
