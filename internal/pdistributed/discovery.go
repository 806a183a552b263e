package pdistributed

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

// discoveryServiceType is the fixed mDNS service type every node advertises
// and browses; only the domain comes from cluster.fqdn_service.
const discoveryServiceType = "_pioneer._tcp"

// Discovery advertises this node over mDNS and browses for peers, replacing
// objectfs gossip.go's hand-rolled UDP broadcast/listen loop with
// github.com/hashicorp/mdns.
type Discovery struct {
	server  *mdns.Server
	cluster *ClusterManager
	domain  string
	stopCh  chan struct{}
}

// NewDiscovery registers self in mDNS under the given cluster domain
// (cluster.fqdn_service) and returns a Discovery ready to Start.
func NewDiscovery(cluster *ClusterManager, domain string, port int) (*Discovery, error) {
	self := cluster.Self()
	info := []string{fmt.Sprintf("raft_port=%d", self.RaftPort)}

	service, err := mdns.NewMDNSService(self.ID, discoveryServiceType, domain+".", "", port, nil, info)
	if err != nil {
		return nil, fmt.Errorf("pdistributed: create mdns service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("pdistributed: start mdns server: %w", err)
	}

	return &Discovery{server: server, cluster: cluster, domain: domain, stopCh: make(chan struct{})}, nil
}

// Start launches the periodic browse loop that discovers and ages peers.
// It blocks until Stop is called; run it in its own goroutine.
func (d *Discovery) Start(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-d.stopCh:
			return
		case <-ticker.C:
			d.browseOnce()
			d.cluster.Sweep()
		}
	}
}

// Stop shuts down the mDNS server and the browse loop.
func (d *Discovery) Stop() error {
	close(d.stopCh)
	return d.server.Shutdown()
}

func (d *Discovery) browseOnce() {
	entriesCh := make(chan *mdns.ServiceEntry, 16)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for entry := range entriesCh {
			d.handleEntry(entry)
		}
	}()

	params := mdns.DefaultParams(discoveryServiceType)
	params.Entries = entriesCh
	params.Timeout = 2 * time.Second
	params.Domain = d.domain
	_ = mdns.Query(params)
	close(entriesCh)
	<-done
}

func (d *Discovery) handleEntry(entry *mdns.ServiceEntry) {
	id := entry.Name
	if idx := strings.Index(id, "."); idx >= 0 {
		id = id[:idx]
	}
	if id == d.cluster.Self().ID {
		return
	}

	raftPort := 0
	for _, field := range entry.InfoFields {
		if strings.HasPrefix(field, "raft_port=") {
			if p, err := strconv.Atoi(strings.TrimPrefix(field, "raft_port=")); err == nil {
				raftPort = p
			}
		}
	}

	addr := entry.AddrV4.String()
	if addr == "<nil>" || addr == "" {
		addr = entry.Addr.String()
	}

	d.cluster.Upsert(NodeInfo{
		ID:       id,
		Addr:     addr,
		RaftPort: raftPort,
	})
}
