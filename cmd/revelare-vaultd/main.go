package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"

	"revelare.io/fractal/storage/grpcvault"
	"revelare.io/fractal/storage/vaultregistry"

	_ "revelare.io/fractal/storage/localfs"
	_ "revelare.io/fractal/storage/memory"
)

func main() {
	fs := flag.NewFlagSet("revelare-vaultd", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7707", "listen address")
	backend := fs.String("backend", "localfs", "vault backend name")
	listBackends := fs.Bool("list-backends", false, "List supported backends and exit")

	vaultregistry.RegisterFlags(fs, vaultregistry.UsageDaemon)

	_ = fs.Parse(os.Args[1:])
	if *listBackends {
		for _, b := range vaultregistry.List(vaultregistry.UsageDaemon) {
			if b.Description == "" {
				_, _ = fmt.Fprintf(os.Stdout, "%s\n", b.Name)
				continue
			}
			_, _ = fmt.Fprintf(os.Stdout, "%s\t%s\n", b.Name, b.Description)
		}
		return
	}

	cas, closeFn, err := vaultregistry.Open(*backend, vaultregistry.UsageDaemon)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if closeFn != nil {
		defer closeFn()
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	grpcvault.RegisterVaultServer(s, &grpcvault.Server{CAS: cas})

	fmt.Fprintf(os.Stderr, "revelare-vaultd listening on %s (backend=%s)\n", lis.Addr().String(), *backend)
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
