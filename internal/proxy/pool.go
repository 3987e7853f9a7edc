package proxy

import (
	"sync"
	"time"
)

// Pool rotates outbound proxies for portal requests. Proxies that fail are
// skipped for a cooldown period before being tried again.
type Pool struct {
	proxies  []string
	index    int
	mu       sync.Mutex
	failed   map[string]time.Time
	cooldown time.Duration
}

// NewPool creates a proxy pool from a list of proxy URLs.
func NewPool(proxies []string) *Pool {
	return &Pool{
		proxies:  proxies,
		failed:   make(map[string]time.Time),
		cooldown: 5 * time.Minute,
	}
}

// Len returns the number of configured proxies.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.proxies)
}

// Next returns the next healthy proxy from the pool, or "" when none are
// configured. If every proxy is cooling down, the current one is returned
// anyway so the run can limp along.
func (p *Pool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	start := p.index
	for {
		proxy := p.proxies[p.index]
		p.index = (p.index + 1) % len(p.proxies)

		if failTime, ok := p.failed[proxy]; ok {
			if time.Since(failTime) < p.cooldown {
				if p.index == start {
					// Every proxy is cooling down
					return proxy
				}
				continue
			}
			delete(p.failed, proxy)
		}

		return proxy
	}
}

// MarkFailed puts a proxy into cooldown.
func (p *Pool) MarkFailed(proxy string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed[proxy] = time.Now()
}

// MarkHealthy clears the failure status of a proxy.
func (p *Pool) MarkHealthy(proxy string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.failed, proxy)
}
