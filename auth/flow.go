package auth

import (
	"bufio"
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/net/context"
	"golang.org/x/oauth2"
)

// Flow obtains a new token interactively.
type Flow interface {
	Authorise(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error)
}

// FlowFunc adapts a function to a Flow.
type FlowFunc func(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error)

func (f FlowFunc) Authorise(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	return f(ctx, config)
}

// LoopbackFlow runs the OAuth2 consent flow through a redirect to a temporary
// HTTP server on the loopback interface. Open is called with the consent URL
// and defaults to opening it in the system browser.
type LoopbackFlow struct {
	Address string
	Open    func(url string) error
	Out     io.Writer
	Log     zerolog.Logger
}

var page = template.Must(template.New("authorised").Parse(`<!DOCTYPE html>
<html>
  <head><title>budget-sheets</title></head>
  <body>
    {{if .Error}}<p>Authorisation failed: {{.Error}}</p>{{else}}<p>budget-sheets is authorised. You can close this window.</p>{{end}}
  </body>
</html>
`))

type callback struct {
	code string
	err  error
}

func (f *LoopbackFlow) Authorise(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	address := f.Address
	if address == "" {
		address = "127.0.0.1:0"
	}

	out := f.Out
	if out == nil {
		out = os.Stdout
	}

	open := f.Open
	if open == nil {
		open = browse
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, err
	}

	state, err := nonce()
	if err != nil {
		listener.Close()
		return nil, err
	}

	cfg := *config
	cfg.RedirectURL = fmt.Sprintf("http://%s/", listener.Addr().String())

	authorised := make(chan callback, 1)
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, rq *http.Request) {
		result := callback{}

		switch {
		case rq.FormValue("state") != state:
			http.Error(w, "invalid state", http.StatusBadRequest)
			return

		case rq.FormValue("error") != "":
			result.err = fmt.Errorf("%s", rq.FormValue("error"))

		case rq.FormValue("code") == "":
			result.err = errors.New("missing authorisation code")

		default:
			result.code = rq.FormValue("code")
		}

		var b bytes.Buffer
		if err := page.Execute(&b, map[string]any{"Error": result.err}); err != nil {
			http.Error(w, "Error formatting page", http.StatusInternalServerError)
		} else {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(b.Bytes())
		}

		select {
		case authorised <- result:
		default:
		}
	})

	srv := &http.Server{
		Handler: mux,
	}

	go func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			f.Log.Warn().Err(err).Msg("authorisation callback server failed")
		}
	}()

	defer srv.Shutdown(context.Background())

	url := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	if err := open(url); err != nil {
		fmt.Fprintf(out, "Could not open the authorisation page in your browser - please open the following link manually:\n\n  %v\n\n", url)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()

	case result := <-authorised:
		if result.err != nil {
			return nil, result.err
		}

		return cfg.Exchange(ctx, result.code)
	}
}

// PasteFlow prints the consent URL and reads the authorisation code pasted
// back by the user.
type PasteFlow struct {
	In  io.Reader
	Out io.Writer
}

func (f *PasteFlow) Authorise(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	in := f.In
	if in == nil {
		in = os.Stdin
	}

	out := f.Out
	if out == nil {
		out = os.Stdout
	}

	url := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(out, "Go to the following link in your browser then type the authorization code:\n%v\n", url)

	code, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && code != "") {
		return nil, fmt.Errorf("unable to read authorization code (%w)", err)
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errors.New("missing authorization code")
	}

	return config.Exchange(ctx, code)
}

func nonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
