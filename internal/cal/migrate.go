package cal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
)

// Azure Migrate's project/appliance/discovery surface has no stable typed
// SDK module, so these four operations go through the generic ARM pipeline
// directly rather than a generated client, per spec §4.1.
const migrateAPIVersion = "2023-06-06"

type migratePipeline struct {
	pipeline runtime.Pipeline
}

func (c *Client) migratePipeline() (*migratePipeline, error) {
	pl, err := arm.NewPipeline("migrateguard", "v1", c.cred, runtime.PipelineOptions{}, nil)
	if err != nil {
		return nil, err
	}
	return &migratePipeline{pipeline: pl}, nil
}

func (p *migratePipeline) get(ctx context.Context, url string, out interface{}) error {
	req, err := runtime.NewRequest(ctx, "GET", url)
	if err != nil {
		return NewMalformed(url, err.Error())
	}
	reqQP := req.Raw().URL.Query()
	reqQP.Set("api-version", migrateAPIVersion)
	req.Raw().URL.RawQuery = reqQP.Encode()

	resp, err := p.pipeline.Do(req)
	if err != nil {
		return NewNetwork(url, err)
	}
	defer resp.Body.Close()

	if !runtime.HasStatusCode(resp, 200) {
		return classifyAzureError(url, runtime.NewResponseError(resp))
	}
	return runtime.UnmarshalAsJSON(resp, out)
}

type migrateValueList struct {
	Value []json.RawMessage `json:"value"`
}

type migrateProjectResource struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// ListMigrateProjects enumerates Azure Migrate projects in a resource
// group, the root scope access.rbac.migrate_project and appliance.health
// both descend from, per spec §4.3.
func (c *Client) ListMigrateProjects(ctx context.Context, subscriptionID, resourceGroup string) ([]ProjectInfo, error) {
	key := CacheKey{Subscription: subscriptionID, ResourceGroup: resourceGroup, Operation: "list_migrate_projects"}
	return do(ctx, c, key, func(ctx context.Context) ([]ProjectInfo, error) {
		mp, err := c.migratePipeline()
		if err != nil {
			return nil, NewNetwork(resourceGroup, err)
		}
		url := fmt.Sprintf("https://management.azure.com/subscriptions/%s/resourceGroups/%s/providers/Microsoft.Migrate/migrateProjects", subscriptionID, resourceGroup)

		var list migrateValueList
		if err := mp.get(ctx, url, &list); err != nil {
			return nil, asFailure(resourceGroup, err)
		}

		projects := make([]ProjectInfo, 0, len(list.Value))
		for _, raw := range list.Value {
			var res migrateProjectResource
			if err := json.Unmarshal(raw, &res); err != nil {
				return nil, NewMalformed(resourceGroup, "unparsable migrate project entry")
			}
			projects = append(projects, ProjectInfo{Name: res.Name, Region: res.Location})
		}
		return projects, nil
	})
}

type migrateApplianceResource struct {
	Name       string `json:"name"`
	Properties struct {
		ApplianceKind string `json:"applianceKind"`
		Health        struct {
			LastHeartbeatUTC string `json:"lastHeartbeatUtc"`
			Status           string `json:"status"`
		} `json:"health"`
	} `json:"properties"`
}

// ListAppliances enumerates the replication appliances registered to a
// migrate project, the data appliance.health evaluates for heartbeat
// staleness, per spec §4.3.
func (c *Client) ListAppliances(ctx context.Context, subscriptionID, project string) ([]ApplianceInfo, error) {
	key := CacheKey{Subscription: subscriptionID, Resource: project, Operation: "list_appliances"}
	return do(ctx, c, key, func(ctx context.Context) ([]ApplianceInfo, error) {
		mp, err := c.migratePipeline()
		if err != nil {
			return nil, NewNetwork(project, err)
		}
		url := fmt.Sprintf("https://management.azure.com/subscriptions/%s/providers/Microsoft.Migrate/migrateProjects/%s/appliances", subscriptionID, project)

		var list migrateValueList
		if err := mp.get(ctx, url, &list); err != nil {
			return nil, asFailure(project, err)
		}

		appliances := make([]ApplianceInfo, 0, len(list.Value))
		for _, raw := range list.Value {
			var res migrateApplianceResource
			if err := json.Unmarshal(raw, &res); err != nil {
				return nil, NewMalformed(project, "unparsable appliance entry")
			}
			heartbeat, err := parseAzureTime(res.Properties.Health.LastHeartbeatUTC)
			if err != nil {
				return nil, NewMalformed(project, "unparsable appliance heartbeat timestamp")
			}
			appliances = append(appliances, ApplianceInfo{
				Name:          res.Name,
				Kind:          res.Properties.ApplianceKind,
				LastHeartbeat: heartbeat,
				Healthy:       res.Properties.Health.Status == "Healthy",
			})
		}
		return appliances, nil
	})
}

type migrateMachineResource struct {
	ID         string `json:"id"`
	Properties struct {
		DisplayName       string   `json:"displayName"`
		IPAddresses       []string `json:"ipAddresses"`
		ReplicationStatus string   `json:"replicationStatus"`
	} `json:"properties"`
}

// ListDiscoveredMachines enumerates machines the appliance has discovered
// in a migrate project, the candidate pool server.discovery and the
// intelligent matcher search against.
func (c *Client) ListDiscoveredMachines(ctx context.Context, subscriptionID, resourceGroup, project string) ([]DiscoveredMachine, error) {
	key := CacheKey{Subscription: subscriptionID, ResourceGroup: resourceGroup, Resource: project, Operation: "list_discovered_machines"}
	return do(ctx, c, key, func(ctx context.Context) ([]DiscoveredMachine, error) {
		mp, err := c.migratePipeline()
		if err != nil {
			return nil, NewNetwork(project, err)
		}
		url := fmt.Sprintf("https://management.azure.com/subscriptions/%s/resourceGroups/%s/providers/Microsoft.Migrate/migrateProjects/%s/machines", subscriptionID, resourceGroup, project)

		var list migrateValueList
		if err := mp.get(ctx, url, &list); err != nil {
			return nil, asFailure(project, err)
		}
		return decodeMachines(list, project)
	})
}

// SearchDiscoveredByName filters discovered machines by a case-insensitive
// substring match over any known-name field. It is not cached by name
// since the name is caller-supplied and low-cardinality relative to the
// full machine list already cached under list_discovered_machines.
func (c *Client) SearchDiscoveredByName(ctx context.Context, subscriptionID, resourceGroup, project, name string) ([]DiscoveredMachine, error) {
	all, err := c.ListDiscoveredMachines(ctx, subscriptionID, resourceGroup, project)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(name)
	var matches []DiscoveredMachine
	for _, m := range all {
		for _, n := range m.Names {
			if strings.Contains(strings.ToLower(n), needle) {
				matches = append(matches, m)
				break
			}
		}
	}
	return matches, nil
}

func decodeMachines(list migrateValueList, project string) ([]DiscoveredMachine, error) {
	machines := make([]DiscoveredMachine, 0, len(list.Value))
	for _, raw := range list.Value {
		var res migrateMachineResource
		if err := json.Unmarshal(raw, &res); err != nil {
			return nil, NewMalformed(project, "unparsable discovered machine entry")
		}
		machines = append(machines, DiscoveredMachine{
			ID:                res.ID,
			Names:             []string{res.Properties.DisplayName},
			IPAddresses:       res.Properties.IPAddresses,
			ReplicationState: res.Properties.ReplicationStatus,
		})
	}
	return machines, nil
}

// asFailure normalizes an error from migratePipeline.get into *Failure so
// the retry policy's type assertion in withRetry matches it.
func asFailure(resource string, err error) error {
	if f, ok := err.(*Failure); ok {
		return f
	}
	return NewNetwork(resource, err)
}

// parseAzureTime parses the RFC3339 timestamps ARM returns for heartbeat
// and similar fields.
func parseAzureTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
