package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client is a typed client for the dependency service.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) ResolveCascade(ctx context.Context, req Request, opts ...grpc.CallOption) ([]string, error) {
	var out componentsResponse
	if err := c.invoke(ctx, "ResolveCascade", req, &out, opts...); err != nil {
		return nil, err
	}
	return out.Components, nil
}

func (c *Client) ResolveConflicts(ctx context.Context, req Request, opts ...grpc.CallOption) ([]string, error) {
	var out componentsResponse
	if err := c.invoke(ctx, "ResolveConflicts", req, &out, opts...); err != nil {
		return nil, err
	}
	return out.Components, nil
}

func (c *Client) CheckAdmission(ctx context.Context, req Request, opts ...grpc.CallOption) (AdmissionResponse, error) {
	var out AdmissionResponse
	err := c.invoke(ctx, "CheckAdmission", req, &out, opts...)
	return out, err
}

func (c *Client) DescribeDependencies(ctx context.Context, req Request, opts ...grpc.CallOption) ([]Requirement, error) {
	var out describeResponse
	if err := c.invoke(ctx, "DescribeDependencies", req, &out, opts...); err != nil {
		return nil, err
	}
	return out.Requirements, nil
}

func (c *Client) invoke(ctx context.Context, method string, req Request, out any, opts ...grpc.CallOption) error {
	in, err := toStruct(req)
	if err != nil {
		return err
	}
	resp := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(method), in, resp, opts...); err != nil {
		return err
	}
	return fromStruct(resp, out)
}
