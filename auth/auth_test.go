package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uhppoted/uhppoted-lib/config"
	"github.com/uhppoted/uhppoted-lib/lockfile"
	"golang.org/x/oauth2"

	"github.com/budgetops/budget-sheets/errs"
)

const secret = `{
  "installed": {
    "client_id": "1234.apps.googleusercontent.com",
    "project_id": "budget-sheets",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "%s",
    "client_secret": "shh",
    "redirect_uris": ["http://localhost"]
  }
}`

// tokenServer is a fake OAuth2 token endpoint that issues access tokens named
// after the number of requests served.
func tokenServer(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()

	var count int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, rq *http.Request) {
		n := atomic.AddInt32(&count, 1)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"issued-%d","token_type":"Bearer","refresh_token":"refresh","expires_in":3600}`, n)
	}))

	t.Cleanup(srv.Close)

	return srv, &count
}

func credentials(t *testing.T, tokenURL string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ClientSecretFile), []byte(fmt.Sprintf(secret, tokenURL)), 0600))

	return dir
}

func fixedFlow(calls *int, token *oauth2.Token) Flow {
	return FlowFunc(func(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
		*calls++
		return token, nil
	})
}

func TestAcquireWithMissingDirectory(t *testing.T) {
	_, err := Acquire(context.Background(), filepath.Join(t.TempDir(), "google_creds"), nil)

	var cerr *errs.ConfigurationError
	require.True(t, errors.As(err, &cerr), "expected ConfigurationError, got %v", err)
	assert.Equal(t, "credentials", cerr.Field)
}

func TestAcquireWithFileInsteadOfDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "google_creds")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0600))

	_, err := Acquire(context.Background(), path, nil)

	var cerr *errs.ConfigurationError
	assert.True(t, errors.As(err, &cerr), "expected ConfigurationError, got %v", err)
}

func TestAcquireWithMissingClientSecret(t *testing.T) {
	_, err := Acquire(context.Background(), t.TempDir(), nil)

	var aerr *errs.AuthenticationError
	assert.True(t, errors.As(err, &aerr), "expected AuthenticationError, got %v", err)
}

func TestAcquireWithInvalidClientSecret(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ClientSecretFile), []byte(`{"web":`), 0600))

	_, err := Acquire(context.Background(), dir, nil)

	var aerr *errs.AuthenticationError
	assert.True(t, errors.As(err, &aerr), "expected AuthenticationError, got %v", err)
}

func TestAcquireRunsFlowAndPersistsToken(t *testing.T) {
	srv, _ := tokenServer(t)
	dir := credentials(t, srv.URL)
	calls := 0
	token := &oauth2.Token{AccessToken: "fresh", TokenType: "Bearer", RefreshToken: "refresh", Expiry: time.Now().Add(time.Hour)}

	h, err := Acquire(context.Background(), dir, []string{SHEETS}, WithFlow(fixedFlow(&calls, token)))
	require.NoError(t, err)
	require.NotNil(t, h.Service)

	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{SHEETS}, h.Scopes)

	stored, err := loadToken(filepath.Join(dir, TokenFile))
	require.NoError(t, err)
	assert.Equal(t, "fresh", stored.AccessToken)
	assert.Equal(t, []string{SHEETS}, stored.Scopes)

	info, err := os.Stat(filepath.Join(dir, TokenFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// ... second invocation reuses the persisted token
	_, err = Acquire(context.Background(), dir, []string{SHEETS}, WithFlow(fixedFlow(&calls, token)))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestAcquireDefaultsToSpreadsheetsScope(t *testing.T) {
	srv, _ := tokenServer(t)
	dir := credentials(t, srv.URL)
	calls := 0

	h, err := Acquire(context.Background(), dir, nil, WithFlow(fixedFlow(&calls, &oauth2.Token{AccessToken: "fresh", Expiry: time.Now().Add(time.Hour)})))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://www.googleapis.com/auth/spreadsheets"}, h.Scopes)
}

func TestAcquireWithDifferentScopesReauthorises(t *testing.T) {
	srv, _ := tokenServer(t)
	dir := credentials(t, srv.URL)
	calls := 0
	token := &oauth2.Token{AccessToken: "fresh", Expiry: time.Now().Add(time.Hour)}

	readonly := "https://www.googleapis.com/auth/spreadsheets.readonly"
	require.NoError(t, saveToken(filepath.Join(dir, TokenFile), token, []string{readonly}))

	_, err := Acquire(context.Background(), dir, []string{SHEETS}, WithFlow(fixedFlow(&calls, token)))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	stored, err := loadToken(filepath.Join(dir, TokenFile))
	require.NoError(t, err)
	assert.Equal(t, []string{SHEETS}, stored.Scopes)
}

func TestAcquireWithReauthorise(t *testing.T) {
	srv, _ := tokenServer(t)
	dir := credentials(t, srv.URL)
	calls := 0
	token := &oauth2.Token{AccessToken: "fresh", Expiry: time.Now().Add(time.Hour)}

	require.NoError(t, saveToken(filepath.Join(dir, TokenFile), token, []string{SHEETS}))

	_, err := Acquire(context.Background(), dir, nil, Reauthorise(), WithFlow(fixedFlow(&calls, token)))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestAcquireRefreshesExpiredToken(t *testing.T) {
	srv, count := tokenServer(t)
	dir := credentials(t, srv.URL)
	calls := 0

	expired := &oauth2.Token{AccessToken: "stale", TokenType: "Bearer", RefreshToken: "refresh", Expiry: time.Now().Add(-time.Hour)}
	require.NoError(t, saveToken(filepath.Join(dir, TokenFile), expired, []string{SHEETS}))

	_, err := Acquire(context.Background(), dir, nil, WithHTTPClient(srv.Client()), WithFlow(fixedFlow(&calls, nil)))
	require.NoError(t, err)

	assert.Equal(t, 0, calls)
	assert.Equal(t, int32(1), atomic.LoadInt32(count))

	stored, err := loadToken(filepath.Join(dir, TokenFile))
	require.NoError(t, err)
	assert.Equal(t, "issued-1", stored.AccessToken)
}

func TestAcquireWithFailedFlow(t *testing.T) {
	srv, _ := tokenServer(t)
	dir := credentials(t, srv.URL)

	flow := FlowFunc(func(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
		return nil, errors.New("access_denied")
	})

	_, err := Acquire(context.Background(), dir, nil, WithFlow(flow))

	var aerr *errs.AuthenticationError
	require.True(t, errors.As(err, &aerr), "expected AuthenticationError, got %v", err)

	_, err = os.Stat(filepath.Join(dir, TokenFile))
	assert.True(t, os.IsNotExist(err), "expected no token file after a failed flow")
}

func TestHandleSendsBearerToken(t *testing.T) {
	tokens, _ := tokenServer(t)
	dir := credentials(t, tokens.URL)
	calls := 0

	var authorization string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, rq *http.Request) {
		authorization = rq.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"spreadsheetId":"S","sheets":[]}`)
	}))
	defer api.Close()

	token := &oauth2.Token{AccessToken: "fresh", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)}
	h, err := Acquire(context.Background(), dir, nil, WithEndpoint(api.URL+"/"), WithFlow(fixedFlow(&calls, token)))
	require.NoError(t, err)

	spreadsheet, err := h.Service.Spreadsheets.Get("S").Do()
	require.NoError(t, err)

	assert.Equal(t, "S", spreadsheet.SpreadsheetId)
	assert.Equal(t, "Bearer fresh", authorization)
}

func TestSaveTokenWithLockedTokenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, TokenFile)
	token := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh"}

	lock, err := lockfile.MakeLockFile(config.Lockfile{File: lockFile(path)})
	require.NoError(t, err)

	err = saveToken(path, token, []string{SHEETS})

	var cerr *errs.ConfigurationError
	require.True(t, errors.As(err, &cerr), "expected ConfigurationError, got %v", err)
	assert.Equal(t, "credentials", cerr.Field)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "token file should not have been written")

	lock.Release()

	require.NoError(t, saveToken(path, token, []string{SHEETS}))
	require.NoError(t, saveToken(path, token, []string{SHEETS}))

	saved, err := loadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "refresh", saved.RefreshToken)
	assert.Equal(t, []string{SHEETS}, saved.Scopes)
}
