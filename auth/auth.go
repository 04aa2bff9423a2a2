// Package auth acquires an authorised Google Sheets service from a directory of
// OAuth2 credential files.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/budgetops/budget-sheets/errs"
)

const (
	ClientSecretFile = "client_secret.json"
	TokenFile        = "token.json"
)

// SHEETS is the read/write Google Sheets scope used when no scopes are given.
const SHEETS = sheets.SpreadsheetsScope

// Handle is an authorised Google Sheets session. It is created once per
// invocation and passed explicitly to every sheet operation.
type Handle struct {
	Service *sheets.Service
	Scopes  []string
}

type options struct {
	flow     Flow
	client   *http.Client
	endpoint string
	force    bool
	log      zerolog.Logger
}

type Option func(*options)

// WithFlow replaces the interactive authorisation flow used when there is no
// usable stored token.
func WithFlow(flow Flow) Option {
	return func(o *options) {
		o.flow = flow
	}
}

// WithHTTPClient sets the base HTTP client used for token exchanges and for
// the authorised Sheets client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithEndpoint points the Sheets service at a different base URL.
func WithEndpoint(url string) Option {
	return func(o *options) {
		o.endpoint = url
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// Reauthorise ignores any stored token and always runs the authorisation flow.
func Reauthorise() Option {
	return func(o *options) {
		o.force = true
	}
}

// Acquire returns a Handle authorised for scopes, using the client secret and
// persisted token in dir. If there is no usable token for scopes, the
// authorisation flow is run and the resulting token is written back to dir.
func Acquire(ctx context.Context, dir string, scopes []string, opts ...Option) (*Handle, error) {
	o := options{
		flow: &LoopbackFlow{},
		log:  zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&o)
	}

	if len(scopes) == 0 {
		scopes = []string{SHEETS}
	}

	if err := checkDir(dir); err != nil {
		return nil, err
	}

	secret := filepath.Join(dir, ClientSecretFile)
	b, err := os.ReadFile(secret)
	if err != nil {
		return nil, &errs.AuthenticationError{Message: fmt.Sprintf("unable to read client secret %s", secret), Err: err}
	}

	config, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, &errs.AuthenticationError{Message: fmt.Sprintf("invalid client secret %s", secret), Err: err}
	}

	if o.client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, o.client)
	}

	tokens := filepath.Join(dir, TokenFile)
	token, err := authorise(ctx, config, tokens, scopes, &o)
	if err != nil {
		return nil, err
	}

	source := &persisting{
		source: config.TokenSource(ctx, token),
		path:   tokens,
		scopes: scopes,
		last:   token.AccessToken,
		log:    o.log,
	}

	client := oauth2.NewClient(ctx, oauth2.ReuseTokenSource(token, source))
	serviceOptions := []option.ClientOption{option.WithHTTPClient(client)}
	if o.endpoint != "" {
		serviceOptions = append(serviceOptions, option.WithEndpoint(o.endpoint))
	}

	service, err := sheets.NewService(ctx, serviceOptions...)
	if err != nil {
		return nil, &errs.ConfigurationError{Field: "endpoint", Message: "unable to create Sheets client", Err: err}
	}

	return &Handle{
		Service: service,
		Scopes:  append([]string(nil), scopes...),
	}, nil
}

func checkDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return &errs.ConfigurationError{Field: "credentials", Message: "directory is required"}
	}

	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return &errs.ConfigurationError{Field: "credentials", Message: fmt.Sprintf("directory %s does not exist", dir), Err: err}
	} else if err != nil {
		return &errs.ConfigurationError{Field: "credentials", Message: fmt.Sprintf("directory %s is not accessible", dir), Err: err}
	} else if !info.IsDir() {
		return &errs.ConfigurationError{Field: "credentials", Message: fmt.Sprintf("%s is not a directory", dir)}
	}

	return nil
}

func authorise(ctx context.Context, config *oauth2.Config, path string, scopes []string, o *options) (*oauth2.Token, error) {
	if !o.force {
		stored, err := loadToken(path)

		switch {
		case err != nil:
			o.log.Debug().Err(err).Str("file", path).Msg("no usable stored token")

		case !stored.covers(scopes):
			o.log.Info().Strs("scopes", scopes).Msg("stored token was issued for different scopes")

		default:
			token, err := config.TokenSource(ctx, stored.token()).Token()
			if err == nil {
				if token.AccessToken != stored.AccessToken {
					if err := saveToken(path, token, scopes); err != nil {
						return nil, err
					}
				}

				return token, nil
			}

			o.log.Warn().Err(err).Msg("stored token could not be refreshed")
		}
	}

	token, err := o.flow.Authorise(ctx, config)
	if err != nil {
		return nil, &errs.AuthenticationError{Message: "authorisation flow failed", Err: err}
	} else if token == nil || token.AccessToken == "" {
		return nil, &errs.AuthenticationError{Message: "authorisation flow did not return an access token"}
	}

	if err := saveToken(path, token, scopes); err != nil {
		return nil, err
	}

	o.log.Info().Str("file", path).Msg("saved OAuth2 token")

	return token, nil
}

// persisting writes refreshed tokens back to the token file.
type persisting struct {
	source oauth2.TokenSource
	path   string
	scopes []string
	last   string
	log    zerolog.Logger
}

func (p *persisting) Token() (*oauth2.Token, error) {
	token, err := p.source.Token()
	if err != nil {
		return nil, err
	}

	if token.AccessToken != p.last {
		if err := saveToken(p.path, token, p.scopes); err != nil {
			p.log.Warn().Err(err).Msg("unable to save refreshed token")
		} else {
			p.last = token.AccessToken
		}
	}

	return token, nil
}
