package api

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

const topologyService = "WsTopology"

type topologyCache struct {
	mu     sync.Mutex
	groups []TargetGroup
	queues []DFUServer
}

// TargetGroups returns the groups a spray can target. Results are cached for
// the lifetime of the client; concurrent callers share one request.
func (c *Client) TargetGroups(ctx context.Context) ([]TargetGroup, error) {
	c.cache.mu.Lock()
	cached := c.cache.groups
	c.cache.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	v, err, _ := c.lookups.Do("groups", func() (any, error) {
		var resp tpGroupQueryResponse
		if err := c.call(ctx, c.lookupClient, topologyService, "TpGroupQuery", "TpGroupQueryResponse", map[string]string{}, &resp); err != nil {
			return nil, fmt.Errorf("query target groups: %w", err)
		}
		groups := resp.TpGroups.TpGroup
		if groups == nil {
			groups = []TargetGroup{}
		}
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
		c.cache.mu.Lock()
		c.cache.groups = groups
		c.cache.mu.Unlock()
		return groups, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]TargetGroup), nil
}

// SprayQueues returns the DFU servers and their queues.
func (c *Client) SprayQueues(ctx context.Context) ([]DFUServer, error) {
	c.cache.mu.Lock()
	cached := c.cache.queues
	c.cache.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	v, err, _ := c.lookups.Do("queues", func() (any, error) {
		var resp tpServiceQueryResponse
		req := map[string]string{"Type": "ALLSERVICES"}
		if err := c.call(ctx, c.lookupClient, topologyService, "TpServiceQuery", "TpServiceQueryResponse", req, &resp); err != nil {
			return nil, fmt.Errorf("query dfu servers: %w", err)
		}
		servers := make([]DFUServer, 0, len(resp.ServiceList.TpDfuServers.TpDfuServer))
		for _, s := range resp.ServiceList.TpDfuServers.TpDfuServer {
			if s.Queue == "" {
				continue
			}
			servers = append(servers, s)
		}
		c.cache.mu.Lock()
		c.cache.queues = servers
		c.cache.mu.Unlock()
		return servers, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]DFUServer), nil
}
