// Package credentials supplies short-lived assumed-role credentials, reusing
// one until it is close to expiry.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"golang.org/x/sync/singleflight"

	"github.com/imrishuroy/skincare-pricing-gateway/internal/aws"
	"github.com/imrishuroy/skincare-pricing-gateway/internal/cache"
	"github.com/imrishuroy/skincare-pricing-gateway/internal/logging"
)

const (
	componentName = "credentials"

	// SessionDuration is requested on every AssumeRole call.
	SessionDuration = time.Hour

	// RefreshMargin is how long before the STS expiry a credential stops being handed out.
	RefreshMargin = 10 * time.Minute

	cacheID = "sts_credentials"
)

// ErrEmptyCredentials is returned when STS answers without a credential triple.
var ErrEmptyCredentials = errors.New("assume role returned no credentials")

// Credential is a temporary key/secret/session-token triple.
type Credential struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Expiration      time.Time
}

// AWS converts the credential for the SDK signer.
func (c Credential) AWS() sdkaws.Credentials {
	return sdkaws.Credentials{
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
		SessionToken:    c.SessionToken,
		Source:          "AssumeRole",
		CanExpire:       !c.Expiration.IsZero(),
		Expires:         c.Expiration,
	}
}

// Cache hands out the current assumed-role credential. Concurrent refreshes
// share one AssumeRole call; failures are never cached.
type Cache struct {
	sts         aws.STSAPI
	cache       *cache.Cache
	roleARN     string
	sessionName string
	group       singleflight.Group
	nowFunc     func() time.Time
}

// NewCache wires the STS client to the shared TTL cache. c's KindCredential
// TTL governs reuse.
func NewCache(client aws.STSAPI, c *cache.Cache, roleARN, sessionName string) *Cache {
	return &Cache{
		sts:         client,
		cache:       c,
		roleARN:     roleARN,
		sessionName: sessionName,
		nowFunc:     time.Now,
	}
}

// Credential returns a cached credential or assumes the role again.
func (c *Cache) Credential(ctx context.Context) (Credential, error) {
	if cred, ok := c.cached(); ok {
		return cred, nil
	}

	v, err, _ := c.group.Do(cacheID, func() (interface{}, error) {
		// another caller may have refreshed while we waited on the group
		if cred, ok := c.cached(); ok {
			return cred, nil
		}
		cred, err := c.assumeRole(ctx)
		if err != nil {
			return Credential{}, err
		}
		c.cache.Set(cache.KindCredential, cacheID, cred)
		return cred, nil
	})
	if err != nil {
		return Credential{}, err
	}
	return v.(Credential), nil
}

func (c *Cache) cached() (Credential, bool) {
	cred, ok := cache.Lookup[Credential](c.cache, cache.KindCredential, cacheID)
	if !ok {
		return Credential{}, false
	}
	if !cred.Expiration.IsZero() && !c.nowFunc().Before(cred.Expiration.Add(-RefreshMargin)) {
		return Credential{}, false
	}
	return cred, true
}

func (c *Cache) assumeRole(ctx context.Context) (Credential, error) {
	out, err := c.sts.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         sdkaws.String(c.roleARN),
		RoleSessionName: sdkaws.String(c.sessionName),
		DurationSeconds: sdkaws.Int32(int32(SessionDuration / time.Second)),
	})
	if err != nil {
		return Credential{}, fmt.Errorf("assume role: %w", err)
	}
	if out == nil || out.Credentials == nil {
		return Credential{}, ErrEmptyCredentials
	}

	cred := Credential{
		AccessKeyID:     sdkaws.ToString(out.Credentials.AccessKeyId),
		SecretAccessKey: sdkaws.ToString(out.Credentials.SecretAccessKey),
		SessionToken:    sdkaws.ToString(out.Credentials.SessionToken),
		Expiration:      sdkaws.ToTime(out.Credentials.Expiration),
	}

	logging.WithComponentAndFields(componentName, map[string]interface{}{
		"access_key_id": logging.MaskSensitiveData(cred.AccessKeyID),
		"expires_at":    cred.Expiration,
	}).Info("assumed role for SP-API")

	return cred, nil
}
