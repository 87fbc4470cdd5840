package signer

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// AssumeRoleCache exchanges static credentials for temporary, role-assumed
// credentials via STS AssumeRole and caches them by role ARN until 60
// seconds before expiry. Refreshes for the same role ARN are coalesced so
// concurrent requesters share one in-flight STS call, mirroring the
// teacher's KeyedMutex per-key serialization (middleware/concurrency.go)
// applied here to credential refresh instead of wallet mutation.
type AssumeRoleCache struct {
	client *http.Client

	mu       sync.Mutex
	entries  map[string]*cacheEntry
	inFlight map[string]*sync.WaitGroup
}

type cacheEntry struct {
	creds  Credentials
	expiry time.Time
}

// NewAssumeRoleCache creates an empty cache using client for STS calls.
func NewAssumeRoleCache(client *http.Client) *AssumeRoleCache {
	if client == nil {
		client = http.DefaultClient
	}
	return &AssumeRoleCache{
		client:   client,
		entries:  make(map[string]*cacheEntry),
		inFlight: make(map[string]*sync.WaitGroup),
	}
}

// Get returns non-expired credentials for roleARN, refreshing via STS
// AssumeRole (using base as the calling identity) if the cached entry is
// missing or within 60 seconds of expiry. Concurrent Get calls for the
// same roleARN block on one shared refresh.
func (c *AssumeRoleCache) Get(ctx context.Context, region, roleARN string, base Credentials) (Credentials, error) {
	const refreshSkew = 60 * time.Second

	for {
		c.mu.Lock()
		if entry, ok := c.entries[roleARN]; ok && time.Now().Add(refreshSkew).Before(entry.expiry) {
			c.mu.Unlock()
			return entry.creds, nil
		}
		if wg, ok := c.inFlight[roleARN]; ok {
			c.mu.Unlock()
			wg.Wait()
			continue
		}
		wg := &sync.WaitGroup{}
		wg.Add(1)
		c.inFlight[roleARN] = wg
		c.mu.Unlock()

		creds, expiry, err := assumeRole(ctx, c.client, region, roleARN, base)

		c.mu.Lock()
		if err == nil {
			c.entries[roleARN] = &cacheEntry{creds: creds, expiry: expiry}
		}
		delete(c.inFlight, roleARN)
		c.mu.Unlock()
		wg.Done()

		if err != nil {
			return Credentials{}, fmt.Errorf("signer: assume role %s: %w", roleARN, err)
		}
		return creds, nil
	}
}

// Invalidate drops any cached entry for roleARN, used when a downstream
// call reports the credentials were rejected with a 403 (CredentialError
// per spec.md §7).
func (c *AssumeRoleCache) Invalidate(roleARN string) {
	c.mu.Lock()
	delete(c.entries, roleARN)
	c.mu.Unlock()
}

// assumeRole performs a raw SigV4-signed STS AssumeRole query-protocol
// call. The core intentionally does not depend on
// aws-sdk-go-v2/service/sts for this — see DESIGN.md — since the request
// shape is a handful of fixed form parameters and the response a small
// XML document.
func assumeRole(ctx context.Context, client *http.Client, region, roleARN string, base Credentials) (Credentials, time.Time, error) {
	if base.AccessKeyID == "" || base.SecretAccessKey == "" {
		return Credentials{}, time.Time{}, ErrMissingCredentials
	}

	host := fmt.Sprintf("sts.%s.amazonaws.com", region)
	form := url.Values{
		"Action":          {"AssumeRole"},
		"Version":         {"2011-06-15"},
		"RoleArn":         {roleARN},
		"RoleSessionName": {"alfred-bedrock-core"},
		"DurationSeconds": {"3600"},
	}
	body := []byte(form.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://"+host+"/", bytes.NewReader(body))
	if err != nil {
		return Credentials{}, time.Time{}, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.ContentLength = int64(len(body))

	for k, vs := range signSTS(base, host, region, body) {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return Credentials{}, time.Time{}, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Credentials{}, time.Time{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return Credentials{}, time.Time{}, fmt.Errorf("sts returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed assumeRoleResponse
	if err := xml.Unmarshal(respBody, &parsed); err != nil {
		return Credentials{}, time.Time{}, fmt.Errorf("decode sts response: %w", err)
	}
	creds := parsed.Result.Credentials
	expiry, err := time.Parse(time.RFC3339, creds.Expiration)
	if err != nil {
		expiry = time.Now().Add(55 * time.Minute)
	}
	return Credentials{
		AccessKeyID:     creds.AccessKeyID,
		SecretAccessKey: creds.SecretAccessKey,
		SessionToken:    creds.SessionToken,
	}, expiry, nil
}

// signSTS signs an STS AssumeRole POST. STS is not one of the three
// services Sign's public API supports (spec.md §4.1 scopes the signer to
// bedrock/bedrock-runtime/s3); this unexported helper reuses the same HMAC
// derivation for the one internal caller that needs an "sts" scope.
func signSTS(base Credentials, host, region string, body []byte) http.Header {
	now := time.Now().UTC()
	amzDate := now.Format("20060102T150405Z")
	dateStamp := now.Format("20060102")
	payloadHash := sha256Hex(body)

	canonicalHeaders := fmt.Sprintf("content-type:application/x-www-form-urlencoded\nhost:%s\nx-amz-date:%s\n", host, amzDate)
	signedHeaders := "content-type;host;x-amz-date"
	if base.SessionToken != "" {
		canonicalHeaders += fmt.Sprintf("x-amz-security-token:%s\n", base.SessionToken)
		signedHeaders = "content-type;host;x-amz-date;x-amz-security-token"
	}

	canonicalRequest := fmt.Sprintf("%s\n%s\n%s\n%s\n%s\n%s",
		http.MethodPost, "/", "", canonicalHeaders, signedHeaders, payloadHash)

	credentialScope := fmt.Sprintf("%s/%s/sts/aws4_request", dateStamp, region)
	stringToSign := fmt.Sprintf("AWS4-HMAC-SHA256\n%s\n%s\n%s", amzDate, credentialScope, sha256Hex([]byte(canonicalRequest)))
	signingKey := deriveKey(base.SecretAccessKey, dateStamp, region, "sts")
	signature := hex.EncodeToString(hmacSHA256(signingKey, []byte(stringToSign)))

	h := http.Header{}
	h.Set("X-Amz-Date", amzDate)
	h.Set("Authorization", fmt.Sprintf("AWS4-HMAC-SHA256 Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		base.AccessKeyID, credentialScope, signedHeaders, signature))
	if base.SessionToken != "" {
		h.Set("X-Amz-Security-Token", base.SessionToken)
	}
	return h
}

type assumeRoleResponse struct {
	XMLName xml.Name `xml:"AssumeRoleResponse"`
	Result  struct {
		Credentials struct {
			AccessKeyID     string `xml:"AccessKeyId"`
			SecretAccessKey string `xml:"SecretAccessKey"`
			SessionToken    string `xml:"SessionToken"`
			Expiration      string `xml:"Expiration"`
		} `xml:"Credentials"`
	} `xml:"AssumeRoleResult"`
}
