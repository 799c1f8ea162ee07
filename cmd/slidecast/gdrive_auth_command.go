package main

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"

	"slidecast/internal/config"
)

// newGDriveAuthCommand runs the installed-app OAuth flow and prints the
// refresh token to put in GDRIVE_REFRESH_TOKEN.
func newGDriveAuthCommand() *cobra.Command {
	var (
		clientID     string
		clientSecret string
		wait         time.Duration
	)

	cmd := &cobra.Command{
		Use:         "gdrive-auth",
		Short:       "Obtain a Google Drive refresh token for the gdrive provider",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID = firstSet(clientID, config.Env("GDRIVE_CLIENT_ID", ""))
			clientSecret = firstSet(clientSecret, config.Env("GDRIVE_CLIENT_SECRET", ""))
			if clientID == "" || clientSecret == "" {
				return errors.New("missing env: GDRIVE_CLIENT_ID and GDRIVE_CLIENT_SECRET")
			}

			ln, err := net.Listen("tcp", "127.0.0.1:0")
			if err != nil {
				return err
			}
			defer ln.Close()

			port := ln.Addr().(*net.TCPAddr).Port
			redirectURL := fmt.Sprintf("http://127.0.0.1:%d/callback", port)

			conf := &oauth2.Config{
				ClientID:     clientID,
				ClientSecret: clientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{drive.DriveFileScope},
				RedirectURL:  redirectURL,
			}

			state := randomState()
			codeCh := make(chan string, 1)
			errCh := make(chan error, 1)

			srv := &http.Server{
				Handler:      callbackHandler(state, codeCh, errCh),
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 10 * time.Second,
			}
			go func() {
				_ = srv.Serve(ln)
			}()
			defer srv.Close()

			// offline access with forced consent so a refresh token is issued
			authURL := conf.AuthCodeURL(
				state,
				oauth2.AccessTypeOffline,
				oauth2.SetAuthURLParam("prompt", "consent"),
			)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Open this URL in your browser:")
			fmt.Fprintln(out)
			fmt.Fprintln(out, authURL)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Waiting for authorization on", redirectURL)

			var code string
			select {
			case code = <-codeCh:
			case err := <-errCh:
				return err
			case <-time.After(wait):
				return errors.New("timed out waiting for authorization")
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			}

			tok, err := conf.Exchange(cmd.Context(), code)
			if err != nil {
				return fmt.Errorf("exchange code: %w", err)
			}

			if strings.TrimSpace(tok.RefreshToken) == "" {
				fmt.Fprintln(out, "No refresh_token was returned.")
				fmt.Fprintln(out, "Revoke the app at https://myaccount.google.com/permissions and run this command again.")
				return errors.New("no refresh token issued")
			}

			fmt.Fprintln(out, "REFRESH TOKEN:")
			fmt.Fprintln(out, tok.RefreshToken)
			return nil
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth client id (default GDRIVE_CLIENT_ID)")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth client secret (default GDRIVE_CLIENT_SECRET)")
	cmd.Flags().DurationVar(&wait, "wait", 3*time.Minute, "How long to wait for the browser callback")

	return cmd
}

func callbackHandler(state string, codeCh chan<- string, errCh chan<- error) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "invalid state", http.StatusBadRequest)
			sendErr(errCh, errors.New("invalid state"))
			return
		}
		if e := q.Get("error"); e != "" {
			http.Error(w, "auth error: "+e, http.StatusBadRequest)
			sendErr(errCh, fmt.Errorf("auth error: %s", e))
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			sendErr(errCh, errors.New("missing code"))
			return
		}

		fmt.Fprintln(w, "OK. You can close this window and return to the terminal.")
		select {
		case codeCh <- code:
		default:
		}
	})
	return mux
}

func sendErr(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default:
	}
}

func randomState() string {
	b := make([]byte, 18)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
