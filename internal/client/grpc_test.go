package client

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func TestGRPCHealthClient(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	hs := health.NewServer()
	hs.SetServingStatus("quotewidget", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	go func() { _ = srv.Serve(lis) }()
	defer srv.Stop()

	c, err := NewGRPCHealthClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	if err != nil {
		t.Fatalf("NewGRPCHealthClient: %v", err)
	}
	defer c.Close()

	got, err := c.Health(context.Background(), "quotewidget")
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if got != "SERVING" {
		t.Fatalf("Health = %q, want SERVING", got)
	}

	if _, err := c.Health(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown service")
	}
}
