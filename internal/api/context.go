package api

import (
	"context"

	"github.com/saty-git24/TALENTFLOW-sub000/internal/models"
)

type contextKey string

const clientContextKey contextKey = "api_client"

// ClientFromContext extracts the APIClient from context
func ClientFromContext(ctx context.Context) *models.APIClient {
	client, ok := ctx.Value(clientContextKey).(*models.APIClient)
	if !ok {
		return nil
	}
	return client
}

// ContextWithClient adds the APIClient to context
func ContextWithClient(ctx context.Context, client *models.APIClient) context.Context {
	return context.WithValue(ctx, clientContextKey, client)
}
