package youtube

import (
	"context"
	"fmt"
	"net/http"

	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Scopes — права, которые нужны для лайков, LL и HL.
var Scopes = []string{
	"https://www.googleapis.com/auth/youtube.force-ssl",
	"https://www.googleapis.com/auth/youtube.readonly",
}

// OAuthConfig собирает oauth2.Config из youtube секции config.yaml.
func OAuthConfig(cfg config.YouTubeConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       Scopes,
	}
}

// AuthCodeURL возвращает ссылку на экран согласия.
//
// Запрашивается offline доступ с повторным согласием, иначе Google
// не выдаёт refresh token при повторной авторизации.
func AuthCodeURL(oc *oauth2.Config, state string) string {
	return oc.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange меняет код авторизации на токены.
func Exchange(ctx context.Context, oc *oauth2.Config, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: authorization code must not be empty", ErrInvalidArgument)
	}
	tok, err := oc.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	if tok.RefreshToken == "" {
		return tok, fmt.Errorf("no refresh token in response: revoke app access and retry with consent")
	}
	return tok, nil
}

// newOAuthHTTPClient возвращает клиент, подставляющий access token,
// полученный по refresh token. Токен обновляется по мере истечения.
//
// Источник токена живёт дольше ctx: после отмены (graceful shutdown)
// запросы, которые ещё дорабатывают, должны иметь возможность обновить токен.
func newOAuthHTTPClient(ctx context.Context, oc *oauth2.Config, refreshToken string, base *http.Client) *http.Client {
	ctx = context.WithValue(context.WithoutCancel(ctx), oauth2.HTTPClient, base)
	ts := oc.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	client := oauth2.NewClient(ctx, ts)
	client.Timeout = base.Timeout
	return client
}
