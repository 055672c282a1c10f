package discovery

import (
	"context"
	"net"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultPorts are the PostgreSQL ports probed on localhost
var DefaultPorts = []int{5432, 5433, 5434, 5435}

// Scanner probes TCP ports
type Scanner struct {
	timeout time.Duration
}

// NewScanner creates a scanner with a short dial timeout
func NewScanner() *Scanner {
	return &Scanner{timeout: 2 * time.Second}
}

// ScanPorts returns the ports of host that accept TCP connections,
// in port order
func (s *Scanner) ScanPorts(ctx context.Context, host string, ports []int) []Instance {
	if len(ports) == 0 {
		ports = DefaultPorts
	}

	var (
		mu    sync.Mutex
		found []Instance
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, port := range ports {
		g.Go(func() error {
			if inst, ok := s.probe(ctx, host, port); ok {
				mu.Lock()
				found = append(found, inst)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(found, func(i, j int) bool { return found[i].Port < found[j].Port })
	return found
}

func (s *Scanner) probe(ctx context.Context, host string, port int) (Instance, bool) {
	inst := Instance{Host: host, Port: port, Source: SourcePortScan}

	start := time.Now()
	dialer := &net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", inst.Address())
	inst.ResponseTime = time.Since(start)
	if err != nil {
		return inst, false
	}
	_ = conn.Close()
	return inst, true
}

// ScanLocalhost probes the default ports on localhost
func (s *Scanner) ScanLocalhost(ctx context.Context) []Instance {
	return s.ScanPorts(ctx, "localhost", DefaultPorts)
}
