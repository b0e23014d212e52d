package memory

import (
	"flag"

	"revelare.io/fractal/storage"
	"revelare.io/fractal/storage/vaultregistry"
)

func init() {
	vaultregistry.MustRegister(vaultregistry.Backend{
		Name:        "memory",
		Description: "in-memory vault (ephemeral, for tests and staging)",
		Usage:       vaultregistry.UsageCLI | vaultregistry.UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {},
		Open: func() (storage.CAS, func() error, error) {
			return New(), nil, nil
		},
		OpenConfig: func(cfg map[string]string) (storage.CAS, func() error, error) {
			return New(), nil, nil
		},
	})
}
