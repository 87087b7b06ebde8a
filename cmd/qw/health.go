package main

import (
	"context"
	"fmt"
	"time"

	"github.com/alfredjeanlab/quotewidget/internal/client"
	"github.com/alfredjeanlab/quotewidget/internal/server"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "Check the health of the quote widget service",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		grpcAddr, _ := cmd.Flags().GetString("grpc")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		status, err := widgetClient.Health(ctx)
		if err != nil {
			return fmt.Errorf("checking health: %w", err)
		}

		out := map[string]string{"status": status}
		if grpcAddr != "" {
			gc, err := client.NewGRPCHealthClient(grpcAddr)
			if err != nil {
				return err
			}
			defer gc.Close()
			grpcStatus, err := gc.Health(ctx, server.ServiceName)
			if err != nil {
				return fmt.Errorf("checking gRPC health: %w", err)
			}
			out["grpc"] = grpcStatus
		}

		if jsonOutput {
			printJSON(out)
		} else {
			fmt.Printf("Health: %s\n", status)
			if g, ok := out["grpc"]; ok {
				fmt.Printf("gRPC:   %s\n", g)
			}
		}

		if status != "ok" {
			return fmt.Errorf("unhealthy: %s", status)
		}
		if g, ok := out["grpc"]; ok && g != "SERVING" {
			return fmt.Errorf("gRPC unhealthy: %s", g)
		}
		return nil
	},
}

func init() {
	healthCmd.Flags().String("grpc", "", "also check the gRPC health service at this address")
}
