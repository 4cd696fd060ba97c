package cal

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/authorization/armauthorization"
)

// ListRoleAssignments returns the role definition IDs assigned at scope, filtered to
// the given principal when one is supplied. Used by both RBAC checks
// (access.rbac.migrate_project and server.rbac.rg) against different
// scopes, per spec §4.3.
func (c *Client) ListRoleAssignments(ctx context.Context, scope, principalID string) ([]string, error) {
	key := CacheKey{Resource: scope, Operation: fmt.Sprintf("list_role_assignments:%s", principalID)}
	return do(ctx, c, key, func(ctx context.Context) ([]string, error) {
		subscriptionID := subscriptionFromScope(scope)
		cs, err := c.clientsFor(subscriptionID)
		if err != nil {
			return nil, NewNetwork(scope, err)
		}

		var opts *armauthorization.RoleAssignmentsClientListForScopeOptions
		if principalID != "" {
			filter := fmt.Sprintf("principalId eq '%s'", principalID)
			opts = &armauthorization.RoleAssignmentsClientListForScopeOptions{Filter: &filter}
		}

		var roles []string
		pager := cs.roleAssign.NewListForScopePager(scope, opts)
		for pager.More() {
			page, err := pager.NextPage(ctx)
			if err != nil {
				return nil, classifyAzureError(scope, err)
			}
			for _, ra := range page.Value {
				if ra.Properties != nil && ra.Properties.RoleDefinitionID != nil {
					roles = append(roles, *ra.Properties.RoleDefinitionID)
				}
			}
		}
		return roles, nil
	})
}

// subscriptionFromScope extracts the subscription ID from an ARM scope
// string of the form "/subscriptions/<id>/...".
func subscriptionFromScope(scope string) string {
	const prefix = "/subscriptions/"
	if len(scope) <= len(prefix) || scope[:len(prefix)] != prefix {
		return ""
	}
	rest := scope[len(prefix):]
	for i, r := range rest {
		if r == '/' {
			return rest[:i]
		}
	}
	return rest
}
