package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/uhppoted/uhppoted-lib/config"
	"github.com/uhppoted/uhppoted-lib/lockfile"
	"golang.org/x/oauth2"

	"github.com/budgetops/budget-sheets/errs"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// tokenFile is the persisted token. The token fields use the same names as
// oauth2.Token so a token file written by the Google quickstart samples can be
// read as is (with no recorded scopes).
type tokenFile struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
	Scopes       []string  `json:"scopes,omitempty"`
}

func (t *tokenFile) token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       t.Expiry,
	}
}

// covers returns true if the token was issued for all of scopes. Tokens with
// no recorded scopes are assumed to cover them.
func (t *tokenFile) covers(scopes []string) bool {
	if len(t.Scopes) == 0 {
		return true
	}

	granted := map[string]bool{}
	for _, s := range t.Scopes {
		granted[s] = true
	}

	for _, s := range scopes {
		if !granted[s] {
			return false
		}
	}

	return true
}

// Retrieves a token from a local file.
func loadToken(file string) (*tokenFile, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	t := tokenFile{}
	if err := json.NewDecoder(f).Decode(&t); err != nil {
		return nil, err
	}

	if t.AccessToken == "" && t.RefreshToken == "" {
		return nil, fmt.Errorf("%s does not contain a token", file)
	}

	return &t, nil
}

// Saves a token to a file path, holding the '<token>.lock' lockfile while the
// token is written.
func saveToken(path string, token *oauth2.Token, scopes []string) error {
	if err := writable(filepath.Dir(path)); err != nil {
		return &errs.ConfigurationError{Field: "credentials", Message: fmt.Sprintf("directory %s is not writable", filepath.Dir(path)), Err: err}
	}

	lock, err := lockfile.MakeLockFile(config.Lockfile{
		File:   lockFile(path),
		Remove: lockfile.RemoveLockfile,
	})
	if err != nil {
		return &errs.ConfigurationError{Field: "credentials", Message: "token file is locked", Err: err}
	}

	defer lock.Release()

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return &errs.ConfigurationError{Field: "credentials", Message: "unable to cache OAuth2 token", Err: err}
	}

	defer f.Close()

	t := tokenFile{
		AccessToken:  token.AccessToken,
		TokenType:    token.TokenType,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
		Scopes:       scopes,
	}

	if err := json.NewEncoder(f).Encode(t); err != nil {
		return &errs.ConfigurationError{Field: "credentials", Message: "unable to cache OAuth2 token", Err: err}
	}

	return nil
}

func lockFile(path string) string {
	return path + ".lock"
}
