package bundle

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// manifestFileName is the npm manifest at the root of every package.
const manifestFileName = "package.json"

// Manifest holds the package.json fields the copier reports on.
type Manifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ReadManifest reads <dir>/package.json.
//
// The boolean is false when the package has no manifest, which is not an
// error. Comments and trailing commas are tolerated.
func ReadManifest(dir string) (Manifest, bool, error) {
	path := filepath.Join(dir, manifestFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Manifest{}, false, nil
		}
		return Manifest{}, false, fmt.Errorf("read %s: %w", path, err)
	}

	var m Manifest
	if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
		return Manifest{}, false, fmt.Errorf("parse %s: %w", path, err)
	}
	return m, true, nil
}
