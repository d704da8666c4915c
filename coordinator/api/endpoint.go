package api

import (
	"context"

	"github.com/go-kit/kit/endpoint"

	"github.com/fedkit/fedkit/coordinator"
)

func historyEndpoint(svc coordinator.Service) endpoint.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		history, err := svc.History(ctx)
		if err != nil {
			return historyResponse{}, err
		}

		return historyResponse{History: history}, nil
	}
}

func statusEndpoint(svc coordinator.Service) endpoint.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		status, err := svc.Status(ctx)
		if err != nil {
			return statusResponse{}, err
		}

		return statusResponse{Status: status}, nil
	}
}
