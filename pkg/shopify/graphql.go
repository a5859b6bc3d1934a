package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	pkgerrors "github.com/harlowprint/backoffice-backend/pkg/errors"
)

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// GraphQLError is a top-level error returned by the GraphQL endpoint.
type GraphQLError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// UserError is a mutation-level validation error.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

func joinUserErrors(errs []UserError) string {
	parts := make([]string, 0, len(errs))
	for _, ue := range errs {
		parts = append(parts, ue.Message)
	}
	return strings.Join(parts, "; ")
}

// Execute runs one GraphQL query or mutation and decodes `data` into out.
// Rate limiting and transport errors follow the same policy as doREST.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any, out any) error {
	var resp graphqlResponse
	_, err := c.doREST(ctx, http.MethodPost, c.graphqlURL, graphqlRequest{Query: query, Variables: variables}, &resp)
	if err != nil {
		return err
	}

	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		throttled := false
		for _, gqlErr := range resp.Errors {
			msgs = append(msgs, gqlErr.Message)
			if strings.Contains(strings.ToLower(gqlErr.Message), "throttled") {
				throttled = true
			}
		}
		code := pkgerrors.CodeDependency
		if throttled {
			code = pkgerrors.CodeRateLimit
		}
		return pkgerrors.New(code, fmt.Sprintf("graphql errors: %s", strings.Join(msgs, "; ")))
	}

	if out != nil && len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding graphql data")
		}
	}
	return nil
}
