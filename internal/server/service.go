// Package server exposes the dependency resolver over gRPC to hosts that run out of
// process.
package server

import (
	"context"
	"errors"

	"github.com/go-logr/logr"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/anvil-platform/plugindeps/internal/resolver"
)

// Service implements DependenciesServer. It keeps no state between calls.
type Service struct {
	logger logr.Logger
}

var _ DependenciesServer = (*Service)(nil)

func NewService(logger logr.Logger) *Service {
	return &Service{logger: logger}
}

func (s *Service) ResolveCascade(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := decodeRequest(in)
	if err != nil {
		return nil, err
	}
	marked := req.session().ResolveCascade(sets.New(req.Seed...))
	s.logger.V(1).Info("resolved cascade", "components", len(req.Components), "seed", len(req.Seed), "marked", marked.Len())
	return encodeResponse(componentsResponse{Components: sets.List(marked)})
}

func (s *Service) ResolveConflicts(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := decodeRequest(in)
	if err != nil {
		return nil, err
	}
	marked := req.session().ResolveConflicts(sets.New(req.ToActivate...))
	s.logger.V(1).Info("resolved conflicts", "components", len(req.Components), "toActivate", len(req.ToActivate), "marked", marked.Len())
	return encodeResponse(componentsResponse{Components: sets.List(marked)})
}

func (s *Service) CheckAdmission(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := decodeRequest(in)
	if err != nil {
		return nil, err
	}
	if req.Component == "" {
		return nil, status.Error(codes.InvalidArgument, ErrMissingComponent.Error())
	}
	scope, err := resolver.ParseScope(req.Scope)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	adm := req.session().CheckAdmission(req.Component, sets.New(req.Batch...), scope)
	s.logger.V(1).Info("checked admission", "component", req.Component, "scope", scope, "decision", adm.Decision.String())
	return encodeResponse(AdmissionResponse{
		Component:   adm.Component,
		Decision:    adm.Decision.String(),
		Unsatisfied: adm.Unsatisfied,
	})
}

func (s *Service) DescribeDependencies(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := decodeRequest(in)
	if err != nil {
		return nil, err
	}
	if req.Component == "" {
		return nil, status.Error(codes.InvalidArgument, ErrMissingComponent.Error())
	}

	report := req.session().DescribeDependencies(req.Component)
	out := describeResponse{Requirements: make([]Requirement, 0, len(report))}
	for _, r := range report {
		entry := Requirement{Capability: r.Capability, State: string(r.State)}
		for _, p := range r.Providers {
			entry.Providers = append(entry.Providers, Provider{ID: p.ID, Name: p.Name})
		}
		out.Requirements = append(out.Requirements, entry)
	}
	return encodeResponse(out)
}

func decodeRequest(in *structpb.Struct) (Request, error) {
	var req Request
	if err := fromStruct(in, &req); err != nil {
		if errors.Is(err, ErrEmptyMessage) {
			return Request{}, status.Error(codes.InvalidArgument, err.Error())
		}
		return Request{}, status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
	}
	return req, nil
}

func encodeResponse(v any) (*structpb.Struct, error) {
	out, err := toStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}
