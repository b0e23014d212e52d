package localfs

import (
	"flag"
	"fmt"
	"strings"

	"revelare.io/fractal/storage"
	"revelare.io/fractal/storage/vaultregistry"
)

var flagDir string

func init() {
	vaultregistry.MustRegister(vaultregistry.Backend{
		Name:        "localfs",
		Description: "local filesystem vault (immutable CID-keyed blocks)",
		Usage:       vaultregistry.UsageCLI | vaultregistry.UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {
			fs.StringVar(&flagDir, "localfs-dir", "", "Vault directory (for --backend=localfs)")
		},
		Open: func() (storage.CAS, func() error, error) {
			return openDir(flagDir)
		},
		OpenConfig: func(cfg map[string]string) (storage.CAS, func() error, error) {
			return openDir(cfg["localfs-dir"])
		},
	})
}

func openDir(dir string) (storage.CAS, func() error, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, nil, fmt.Errorf("missing --localfs-dir")
	}
	cas, err := New(dir)
	if err != nil {
		return nil, nil, err
	}
	return cas, nil, nil
}
