package spapi

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/skincare-pricing-gateway/internal/credentials"
)

type stubCreds struct {
	cred credentials.Credential
	err  error
}

func (s *stubCreds) Credential(ctx context.Context) (credentials.Credential, error) {
	return s.cred, s.err
}

type boundClient struct {
	Client
	cred credentials.Credential
}

type countingFactory struct {
	built int
}

func (f *countingFactory) NewClient(cred credentials.Credential) Client {
	f.built++
	return &boundClient{cred: cred}
}

func TestProvider_ReusesClientForSameCredential(t *testing.T) {
	creds := &stubCreds{cred: credentials.Credential{AccessKeyID: "ASIA1"}}
	f := &countingFactory{}
	p := NewProvider(creds, f)

	c1, err := p.Client(context.Background())
	require.NoError(t, err)
	c2, err := p.Client(context.Background())
	require.NoError(t, err)

	assert.Same(t, c1, c2)
	assert.Equal(t, 1, f.built)
}

func TestProvider_RebuildsOnCredentialRefresh(t *testing.T) {
	creds := &stubCreds{cred: credentials.Credential{AccessKeyID: "ASIA1"}}
	f := &countingFactory{}
	p := NewProvider(creds, f)

	_, err := p.Client(context.Background())
	require.NoError(t, err)

	creds.cred = credentials.Credential{AccessKeyID: "ASIA2"}
	c, err := p.Client(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, f.built)
	assert.Equal(t, "ASIA2", c.(*boundClient).cred.AccessKeyID)
}

func TestProvider_CredentialErrorPropagates(t *testing.T) {
	stsErr := errors.New("assume role: AccessDenied")
	p := NewProvider(&stubCreds{err: stsErr}, &countingFactory{})

	c, err := p.Client(context.Background())
	assert.Nil(t, c)
	assert.ErrorIs(t, err, stsErr)
}

func TestProvider_TokenCheck(t *testing.T) {
	creds := &stubCreds{cred: credentials.Credential{AccessKeyID: "ASIA1"}}
	f := &countingFactory{}
	lwaErr := &Error{StatusCode: 400, Code: "invalid_grant", Message: "revoked"}

	p := NewProvider(creds, f, WithTokenCheck(failingTokens{err: lwaErr}))
	c, err := p.Client(context.Background())
	assert.Nil(t, c)
	assert.ErrorIs(t, err, lwaErr)
	assert.Equal(t, 0, f.built)

	p = NewProvider(creds, f, WithTokenCheck(staticTokens("ok")))
	c, err = p.Client(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, c)
}
