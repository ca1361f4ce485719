package internal

import (
	"context"
	"time"

	"github.com/relaykit/relay/pkg/limiter"
	"github.com/relaykit/relay/pkg/payload"
	"github.com/relaykit/relay/pkg/token"
)

type fakeAuthenticator struct {
	principal *token.Principal
	err       error
	gotToken  string
	gotOpts   token.Options
	calls     int
}

func (f *fakeAuthenticator) Verify(_ context.Context, tok string, opts token.Options) (*token.Principal, error) {
	f.calls++
	f.gotToken = tok
	f.gotOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	if f.principal != nil {
		return f.principal, nil
	}
	return &token.Principal{Subject: "tester", Claims: map[string]any{"sub": "tester"}, Token: tok}, nil
}

type fakeValidator struct {
	out        map[string]any
	err        error
	gotPayload map[string]any
	calls      int
}

func (f *fakeValidator) Validate(_ context.Context, p map[string]any, _ payload.Schema) (map[string]any, error) {
	f.calls++
	f.gotPayload = p
	if f.err != nil {
		return nil, f.err
	}
	if f.out != nil {
		return f.out, nil
	}
	return p, nil
}

type fakeLimiter struct {
	quota  *limiter.Quota
	err    error
	gotCfg limiter.Config
	calls  int
}

func (f *fakeLimiter) Setup(_ context.Context, cfg limiter.Config) (*limiter.Quota, error) {
	f.calls++
	f.gotCfg = cfg
	if f.err != nil {
		return nil, f.err
	}
	return f.quota, nil
}

type fakeCacher struct {
	entries       map[string]CachedResponse
	retrieveErr   error
	storeErr      error
	storedKey     string
	storedValue   CachedResponse
	storedExpire  time.Duration
	retrieveCalls int
	storeCalls    int
}

func newFakeCacher() *fakeCacher {
	return &fakeCacher{entries: make(map[string]CachedResponse)}
}

func (f *fakeCacher) Retrieve(_ context.Context, key string) (*CachedResponse, error) {
	f.retrieveCalls++
	if f.retrieveErr != nil {
		return nil, f.retrieveErr
	}
	if v, ok := f.entries[key]; ok {
		return &v, nil
	}
	return nil, nil
}

func (f *fakeCacher) Store(_ context.Context, key string, value CachedResponse, expire time.Duration) error {
	f.storeCalls++
	f.storedKey = key
	f.storedValue = value
	f.storedExpire = expire
	if f.storeErr != nil {
		return f.storeErr
	}
	f.entries[key] = value
	return nil
}

// echoController returns its payload unchanged.
func echoController(_ context.Context, p map[string]any) (any, error) {
	return p, nil
}
