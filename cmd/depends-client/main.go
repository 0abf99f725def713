package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"sigs.k8s.io/yaml"

	"github.com/anvil-platform/plugindeps/internal/server"
)

func main() {
	var target string
	var method string
	var requestFile string
	flag.StringVar(&target, "target", "127.0.0.1:50051", "gRPC server address")
	flag.StringVar(&method, "method", "CheckAdmission", "ResolveCascade, ResolveConflicts, CheckAdmission or DescribeDependencies")
	flag.StringVar(&requestFile, "request", "", "YAML or JSON request file")
	flag.Parse()

	if requestFile == "" {
		fmt.Fprintln(os.Stderr, "-request is required")
		os.Exit(2)
	}
	raw, err := os.ReadFile(requestFile)
	if err != nil {
		panic(fmt.Errorf("read %s: %w", requestFile, err))
	}
	var req server.Request
	if err := yaml.Unmarshal(raw, &req); err != nil {
		panic(fmt.Errorf("parse %s: %w", requestFile, err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		panic(fmt.Errorf("dial %s: %w", target, err))
	}
	defer conn.Close()

	c := server.NewClient(conn)

	var result any
	switch method {
	case "ResolveCascade":
		result, err = c.ResolveCascade(ctx, req)
	case "ResolveConflicts":
		result, err = c.ResolveConflicts(ctx, req)
	case "CheckAdmission":
		result, err = c.CheckAdmission(ctx, req)
	case "DescribeDependencies":
		result, err = c.DescribeDependencies(ctx, req)
	default:
		fmt.Fprintf(os.Stderr, "unknown method %q\n", method)
		os.Exit(2)
	}
	if err != nil {
		fmt.Printf("%s error: %v\n", method, err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		panic(fmt.Errorf("encode result: %w", err))
	}
	fmt.Println(string(out))
}
