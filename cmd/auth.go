package cmd

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/teemow/ticktick-mcp/internal/config"
)

const (
	authorizeURL        = "https://ticktick.com/oauth/authorize"
	tokenExchangeURL    = "https://ticktick.com/oauth/token"
	defaultCallbackAddr = "127.0.0.1:8085"
)

func newAuthCmd() *cobra.Command {
	var (
		clientID     string
		clientSecret string
		callbackAddr string
	)

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize with TickTick and obtain API tokens",
		Long: `Run the OAuth2 authorization-code flow against TickTick.

A temporary local HTTP server receives the redirect, the authorization
code is exchanged for tokens, and the resulting environment variables
are printed so they can be added to your .env file.

Register an application at https://developer.ticktick.com to obtain a
client ID and secret, with the redirect URI set to
http://127.0.0.1:8085/callback.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if clientID == "" {
				clientID = os.Getenv(config.EnvClientID)
			}
			if clientSecret == "" {
				clientSecret = os.Getenv(config.EnvClientSecret)
			}
			if clientID == "" || clientSecret == "" {
				return fmt.Errorf("client ID and secret are required (flags or %s/%s env vars)",
					config.EnvClientID, config.EnvClientSecret)
			}
			return runAuth(cmd.Context(), clientID, clientSecret, callbackAddr)
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "", "TickTick application client ID. Can also use TICKTICK_CLIENT_ID env var.")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "TickTick application client secret. Can also use TICKTICK_CLIENT_SECRET env var.")
	cmd.Flags().StringVar(&callbackAddr, "callback-addr", defaultCallbackAddr, "Local address for the OAuth redirect listener")

	return cmd
}

func runAuth(ctx context.Context, clientID, clientSecret, callbackAddr string) error {
	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       []string{"tasks:read", "tasks:write"},
		Endpoint: oauth2.Endpoint{
			AuthURL:   authorizeURL,
			TokenURL:  tokenExchangeURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
		RedirectURL: fmt.Sprintf("http://%s/callback", callbackAddr),
	}

	state, err := randomState()
	if err != nil {
		return err
	}

	type callback struct {
		code string
		err  error
	}
	callbackCh := make(chan callback, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("state"); got != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			callbackCh <- callback{err: fmt.Errorf("state mismatch in OAuth redirect")}
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing authorization code", http.StatusBadRequest)
			callbackCh <- callback{err: fmt.Errorf("redirect carried no authorization code")}
			return
		}
		fmt.Fprintln(w, "Authorization received. You can close this window.")
		callbackCh <- callback{code: code}
	})

	srv := &http.Server{
		Addr:              callbackAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			callbackCh <- callback{err: fmt.Errorf("callback server failed: %w", err)}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := conf.AuthCodeURL(state)
	fmt.Println("Open this URL in your browser to authorize access:")
	fmt.Println()
	fmt.Println("  " + authURL)
	fmt.Println()
	fmt.Println("Waiting for the redirect...")

	var code string
	select {
	case cb := <-callbackCh:
		if cb.err != nil {
			return cb.err
		}
		code = cb.code
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timed out waiting for the OAuth redirect")
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchanging authorization code: %w", err)
	}

	fmt.Println()
	fmt.Println("Authorization successful. Add these lines to your .env file:")
	fmt.Println()
	fmt.Printf("%s=%s\n", config.EnvClientID, clientID)
	fmt.Printf("%s=%s\n", config.EnvClientSecret, clientSecret)
	fmt.Printf("%s=%s\n", config.EnvAccessToken, token.AccessToken)
	if token.RefreshToken != "" {
		fmt.Printf("%s=%s\n", config.EnvRefreshToken, token.RefreshToken)
	}
	return nil
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating OAuth state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
