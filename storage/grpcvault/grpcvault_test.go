package grpcvault

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"revelare.io/fractal/storage"
	"revelare.io/fractal/storage/memory"
)

func newBufClient(t *testing.T, cas storage.CAS) *Client {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterVaultServer(srv, &Server{CAS: cas})

	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	dialer := func(ctx context.Context, s string) (net.Conn, error) { return lis.Dial() }
	cc, err := grpc.DialContext(
		context.Background(),
		"bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("DialContext: %v", err)
	}
	t.Cleanup(func() { _ = cc.Close() })

	return &Client{cc: cc, client: NewVaultClient(cc), Timeout: 2 * time.Second}
}

func TestGRPCVault_Memory_RoundTrip(t *testing.T) {
	client := newBufClient(t, memory.New())

	payload := []byte("hello grpcvault")
	id, err := client.Put(payload)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !id.Defined() {
		t.Fatalf("expected defined CID")
	}
	if !client.Has(id) {
		t.Fatalf("Has: expected true")
	}
	got, err := client.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("payload mismatch")
	}
}

func TestGRPCVault_GetMissingMapsToNotFound(t *testing.T) {
	client := newBufClient(t, memory.New())

	missing, err := client.Put([]byte("present"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	other := memory.New()
	clientEmpty := newBufClient(t, other)

	if clientEmpty.Has(missing) {
		t.Fatalf("Has: expected false on empty vault")
	}
	_, err = clientEmpty.Get(missing)
	if !storage.IsNotFound(err) {
		t.Fatalf("Get missing: got %v want ErrNotFound", err)
	}
}
