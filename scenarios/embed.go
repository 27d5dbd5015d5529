package scenarios

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Dir is the on-disk override directory. Files found there win over the
// embedded copies so scenarios can be edited while the demo runs.
const Dir = "scenarios"

//go:embed *.yaml scripts/*.tengo
var FS embed.FS

func Load(name string) ([]byte, error) {
	clean := cleanSpecPath(name)
	if data, err := os.ReadFile(diskPath(clean)); err == nil {
		return data, nil
	}
	return FS.ReadFile(clean)
}

func LoadScript(name string) ([]byte, error) {
	clean := cleanScriptPath(name)
	if data, err := os.ReadFile(diskPath(clean)); err == nil {
		return data, nil
	}
	return FS.ReadFile(clean)
}

// ModTime reports the modification time of a disk override, if any. name
// may be a scenario name or a path under Dir such as a watcher event.
func ModTime(name string) (time.Time, bool) {
	info, err := os.Stat(diskPath(cleanSpecPath(name)))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// Changes drops repeated change notifications for one write. Editors often
// produce several events per save.
type Changes struct {
	seen map[string]time.Time
}

// Fresh reports whether path changed since it was last seen. A removed
// override counts as a change since the embedded copy takes over.
func (c *Changes) Fresh(path string) bool {
	if c == nil {
		return true
	}
	if c.seen == nil {
		c.seen = map[string]time.Time{}
	}
	key := cleanSpecPath(path)
	stamp, ok := ModTime(path)
	if !ok {
		delete(c.seen, key)
		return true
	}
	if prev, had := c.seen[key]; had && prev.Equal(stamp) {
		return false
	}
	c.seen[key] = stamp
	return true
}

// List returns the names of the embedded scenarios.
func List() ([]string, error) {
	entries, err := fs.Glob(FS, "*.yaml")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e, ".yaml"))
	}
	sort.Strings(names)
	return names, nil
}

func cleanSpecPath(name string) string {
	if name == "" {
		return ""
	}
	s := filepath.ToSlash(name)
	s = strings.TrimPrefix(s, Dir+"/")
	if path.Ext(s) == "" {
		s += ".yaml"
	}
	return s
}

func cleanScriptPath(name string) string {
	if name == "" {
		return ""
	}
	s := filepath.ToSlash(name)
	if after, ok := strings.CutPrefix(s, Dir+"/"); ok {
		s = after
	}
	if after, ok := strings.CutPrefix(s, "scripts/"); ok {
		s = after
	}
	if path.Ext(s) == "" {
		s += ".tengo"
	}
	return "scripts/" + s
}

func diskPath(clean string) string {
	return filepath.Join(Dir, filepath.FromSlash(clean))
}
