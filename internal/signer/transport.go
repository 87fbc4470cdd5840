package signer

import (
	"crypto/tls"
	"net"
	"net/http"
	"sync"
	"time"
)

// PoolConfig holds connection pool tuning knobs, adapted from the
// teacher's provider/pool.go connection pool manager — generalized here
// to key by AWS service (bedrock, bedrock-runtime, s3) rather than by
// third-party provider name, since the signer's callers all target one
// of those three hosts.
type PoolConfig struct {
	MaxIdleConns          int
	MaxIdleConnsPerHost   int
	MaxConnsPerHost       int
	IdleConnTimeout       time.Duration
	TLSHandshakeTimeout   time.Duration
	DialTimeout           time.Duration
	KeepAlive             time.Duration
	ResponseHeaderTimeout time.Duration
	ExpectContinueTimeout time.Duration
}

// DefaultPoolConfig returns production-grade pool defaults.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   32,
		MaxConnsPerHost:       64,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		DialTimeout:           10 * time.Second,
		KeepAlive:             30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// TransportPool hands out one shared *http.Transport per AWS service, so
// concurrent requests across regions/credentials reuse the same
// connection pool instead of each request building its own.
type TransportPool struct {
	mu         sync.RWMutex
	transports map[Service]*http.Transport
	cfg        PoolConfig
}

// NewTransportPool creates a pool using cfg for every service's transport.
func NewTransportPool(cfg PoolConfig) *TransportPool {
	return &TransportPool{
		transports: make(map[Service]*http.Transport),
		cfg:        cfg,
	}
}

// Transport returns the shared transport for svc, creating it on first use.
func (p *TransportPool) Transport(svc Service) *http.Transport {
	p.mu.RLock()
	if t, ok := p.transports[svc]; ok {
		p.mu.RUnlock()
		return t
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.transports[svc]; ok {
		return t
	}

	dialer := &net.Dialer{Timeout: p.cfg.DialTimeout, KeepAlive: p.cfg.KeepAlive}
	t := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          p.cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   p.cfg.MaxIdleConnsPerHost,
		MaxConnsPerHost:       p.cfg.MaxConnsPerHost,
		IdleConnTimeout:       p.cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   p.cfg.TLSHandshakeTimeout,
		ExpectContinueTimeout: p.cfg.ExpectContinueTimeout,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
		ForceAttemptHTTP2:     true,
	}
	p.transports[svc] = t
	return t
}

// Client returns an *http.Client for svc using the pooled transport and
// the given per-request timeout.
func (p *TransportPool) Client(svc Service, timeout time.Duration) *http.Client {
	return &http.Client{Transport: p.Transport(svc), Timeout: timeout}
}

// Close releases idle connections held by every service's transport.
func (p *TransportPool) Close() {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, t := range p.transports {
		t.CloseIdleConnections()
	}
}
