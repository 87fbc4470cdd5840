/*
[AI GENERATED - GOVERNANCE PROTOCOL]
──────────────────────────────────────────────────────────────
Model:       Claude Opus 4.6
Tier:        L3
Logic:       Server bundles every handler's shared dependencies (the
             oprouter Client, the S3 client factory, server config,
             and a request logger), mirroring the teacher's
             ProxyHandler{logger, registry} shape but scoped to this
             core's three collaborators instead of a provider
             registry.
Root Cause:  Every handler needs the signed-request client and
             per-request S3 client construction; bundling them avoids
             passing five arguments into every handler constructor.
Context:     main.go builds one Server and passes it to NewRouter to
             get the http.Handler passed to http.Server.
Suitability: L3 — dependency wiring only.
──────────────────────────────────────────────────────────────
*/
package httpapi

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/AlfredDev/alfred-bedrock-core/internal/config"
	"github.com/AlfredDev/alfred-bedrock-core/internal/oprouter"
	"github.com/AlfredDev/alfred-bedrock-core/internal/s3bridge"
	"github.com/AlfredDev/alfred-bedrock-core/internal/signer"
)

// Server holds the dependencies every handler in this package needs.
type Server struct {
	Client *oprouter.Client
	Pool   *signer.TransportPool
	STS    *signer.AssumeRoleCache
	Config *config.Config
	Logger zerolog.Logger
}

// NewServer builds a Server from its collaborators.
func NewServer(pool *signer.TransportPool, sts *signer.AssumeRoleCache, cfg *config.Config, logger zerolog.Logger) *Server {
	return &Server{
		Client: oprouter.NewClient(pool, sts),
		Pool:   pool,
		STS:    sts,
		Config: cfg,
		Logger: logger,
	}
}

// s3Client builds a bucket-scoped S3 client for t, resolving assumed-role
// credentials through the shared STS cache when required.
func (s *Server) s3Client(r *http.Request, t oprouter.ProviderTarget) (*s3bridge.Client, error) {
	creds, err := oprouter.ResolvedCredentials(r.Context(), t, s.STS)
	if err != nil {
		return nil, err
	}
	return &s3bridge.Client{
		HTTPClient:  s.Pool.Client(signer.ServiceS3, 0),
		Creds:       creds,
		Region:      t.Region,
		Bucket:      t.S3Bucket,
		SSE:         t.SSE,
		SSEKMSKeyID: t.SSEKMSKeyID,
	}, nil
}
