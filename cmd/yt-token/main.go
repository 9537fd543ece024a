// yt-token — одноразовая утилита получения refresh token для YouTube.
//
// Печатает ссылку на экран согласия, ждёт код авторизации из redirect URL
// и выводит access/refresh токены. refresh token кладётся в
// YOUTUBE_REFRESH_TOKEN (.env), откуда его подхватывает config.yaml.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/config"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/youtube"
	"github.com/google/uuid"
)

var (
	envFlag      = flag.String("env", ".env", "Path to .env with YOUTUBE_CLIENT_ID / YOUTUBE_CLIENT_SECRET")
	redirectFlag = flag.String("redirect", "http://localhost", "OAuth redirect URL registered for the client")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(*envFlag); err != nil {
		return err
	}

	cfg := config.YouTubeConfig{
		ClientID:     os.Getenv("YOUTUBE_CLIENT_ID"),
		ClientSecret: os.Getenv("YOUTUBE_CLIENT_SECRET"),
		RedirectURL:  *redirectFlag,
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return fmt.Errorf("YOUTUBE_CLIENT_ID and YOUTUBE_CLIENT_SECRET must be set")
	}

	oc := youtube.OAuthConfig(cfg)
	state := uuid.NewString()

	fmt.Println("Open this URL in your browser and grant access:")
	fmt.Println()
	fmt.Println(youtube.AuthCodeURL(oc, state))
	fmt.Println()
	fmt.Print("Paste the code (or the full redirect URL): ")

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("read code: %w", err)
	}

	code, err := extractCode(strings.TrimSpace(line), state)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tok, err := youtube.Exchange(ctx, oc, code)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("ACCESS TOKEN: ", tok.AccessToken)
	fmt.Println("REFRESH TOKEN:", tok.RefreshToken)
	fmt.Println()
	fmt.Println("Add to .env:")
	fmt.Printf("YOUTUBE_REFRESH_TOKEN=%s\n", tok.RefreshToken)
	return nil
}

// extractCode принимает либо сам код, либо redirect URL целиком.
// Для URL state обязателен и должен совпасть с выданным.
func extractCode(input, state string) (string, error) {
	if !strings.Contains(input, "://") {
		return input, nil
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("parse redirect url: %w", err)
	}
	q := u.Query()
	if e := q.Get("error"); e != "" {
		return "", fmt.Errorf("authorization denied: %s", e)
	}
	if q.Get("state") != state {
		return "", fmt.Errorf("state mismatch")
	}
	return q.Get("code"), nil
}
